package models

// DatasetRequest is the query contract for the per-dataset endpoints.
// Identity is the opaque value forwarded to the remote login; there is
// deliberately no default.
type DatasetRequest struct {
	Identity string `query:"identity" validate:"required,min=4"`
	Fresh    bool   `query:"fresh" default:"false"`
}

// RefreshRequest asks the worker to re-fetch all datasets for one identity.
type RefreshRequest struct {
	Identity string `json:"identity" validate:"required,min=4"`
}
