package mongostore

var GCFilter = gcFilter
