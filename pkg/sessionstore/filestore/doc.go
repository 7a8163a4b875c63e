// Package filestore stores session data in plain files.
//
// Each record lives in {dir}/{name}_{id}. Reads take a shared advisory lock
// and writes an exclusive one, so concurrent requests never observe a torn
// file. The last writer wins.
//
// The save path given to Open is "dir", "N;dir" or "N;mode;dir". N is
// accepted and ignored; mode is an octal permission used when dir has to be
// created.
//
//	store := filestore.New(filestore.DefaultConfig())
//	sess, err := session.New(store, transport, session.WithSavePath("/var/lib/app/sessions"))
package filestore
