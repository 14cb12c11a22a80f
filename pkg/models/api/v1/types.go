package v1

type ModelFile struct {
	Name string
	Data []byte
}

// UploadModelRequest holds the raw form values of an upload. File is nil when
// the multipart field was not sent.
type UploadModelRequest struct {
	File         *ModelFile
	Price        string
	PaymentToken string
}

type UploadModelResponse struct {
	Success bool   `json:"success"`
	TokenID uint64 `json:"tokenId"`
	IpfsCID string `json:"ipfsCid"`
}

type Listing struct {
	ID          uint64 `json:"tokenId"`
	QueryID     uint64 `json:"queryId"`
	MessageHash string `json:"messageHash"`
}

const (
	ListingStatusPending  = "pending"
	ListingStatusListed   = "listed"
	ListingStatusRejected = "rejected"
)

type ListingStatus struct {
	QueryID uint64 `json:"queryId"`
	Status  string `json:"status"`
	TokenID uint64 `json:"tokenId,omitempty"`
}
