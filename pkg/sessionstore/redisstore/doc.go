// Package redisstore stores session data in Redis hashes.
//
// Each record is a hash at {prefix}{name}_{id} with the fields "data" and
// "written_at" (unix seconds). GC walks {prefix}{name}_* with SCAN, so it
// only touches the namespace of the session that runs it. An optional KeyTTL
// lets Redis expire abandoned keys on its own.
package redisstore
