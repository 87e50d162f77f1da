package handlers

// Submission statuses.
const (
	StatusQueued = "queued"
	StatusDryRun = "dry_run"
)

// SubmitRequest is the request body for notarizing a document hash.
type SubmitRequest struct {
	Body struct {
		Hash string `doc:"SHA-256 of the document, hex encoded" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08" json:"hash" maxLength:"64" minLength:"64" pattern:"^[0-9a-fA-F]{64}$"`
	}
}

// SubmitResponse is the response for an accepted submission.
type SubmitResponse struct {
	Body struct {
		ID         string `doc:"Submission identifier"               example:"sub_V1StGXR8_Z5jdHi6B-myT" json:"id"`
		Status     string `doc:"queued, or dry_run when not queued"  example:"queued"                    json:"status"`
		Hash       string `doc:"Normalized document hash"                                                json:"hash"`
		GatewayURL string `doc:"Gateway the bundle will be posted to" example:"https://arweave.net"       json:"gatewayUrl"`
		KMSKeyARN  string `doc:"Key used to sign the bundle"                                             json:"kmsKeyArn"`
	}
}
