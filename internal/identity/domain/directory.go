package domain

import "time"

// DirectoryAssociation binds an account to the local storage directory
// it last worked in, so a returning session can auto-restore it. One
// row per account, overwritten on every successful associate call. The
// mapping is advisory restore state: any client-side ownership proof
// file never overrides it.
type DirectoryAssociation struct {
	AccountUUID    string    `json:"account_uuid"`
	DirectoryPath  string    `json:"directory_path"`
	LastAccessTime time.Time `json:"last_access_time"`
}
