package storage

import "vidsphere/internal/ports"

// Provider is the blob store contract used by the transcoder.
// It is an alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
