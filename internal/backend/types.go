package backend

// LoginRequest is the credential payload for POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the identity it belongs to
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SignupRequest is the account creation payload for POST /users
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// JobDetails describes a single job as returned by GET /jobs/details
type JobDetails struct {
	JobNumber       string  `json:"jobNumber"`
	JobTitle        string  `json:"jobTitle"`
	ClientName      string  `json:"clientName"`
	OrderQuantity   int     `json:"orderQuantity"`
	ProductCategory string  `json:"productCategory"`
	UnitPrice       float64 `json:"unitPrice"`
	JobCreatedOn    string  `json:"jobCreatedOn"`
}

// JobDetailsResponse wraps the job list returned by GET /jobs/details
type JobDetailsResponse struct {
	Jobs  []JobDetails `json:"jobs"`
	Count int          `json:"count"`
}

// AudioRecord is a persisted voice note as returned by the listing
// endpoint. The audio payload itself is omitted from listings and is
// fetched lazily via FetchAudio.
type AudioRecord struct {
	ID            string `json:"id"`
	CorrelationID string `json:"audioId"`
	JobNumber     string `json:"jobNumber"`
	ToDepartment  string `json:"toDepartment"`
	CreatedAt     string `json:"createdAt"`
	CreatedBy     string `json:"createdBy"`
	Summary       string `json:"summary,omitempty"`
}

// SaveVoiceNoteRequest is the persistence payload for POST /voice-notes.
// AudioBlob is base64-encoded; AudioID carries the correlation identifier
// shared by every job the recording is attached to.
type SaveVoiceNoteRequest struct {
	JobNumber     string `json:"jobNumber"`
	ToDepartment  string `json:"toDepartment"`
	AudioBlob     string `json:"audioBlob"`
	AudioMimeType string `json:"audioMimeType"`
	CreatedBy     string `json:"createdBy"`
	UserID        string `json:"userId"`
	Summary       string `json:"summary,omitempty"`
	AudioID       string `json:"audioId"`
}

// AudioPayload is the lazily fetched audio content for one record
type AudioPayload struct {
	AudioBlob     string `json:"audioBlob"`
	AudioMimeType string `json:"audioMimeType"`
}

// AnalyzeRequest asks the backend to summarize a recording for a department
type AnalyzeRequest struct {
	AudioBlob     string `json:"audioBlob"`
	AudioMimeType string `json:"audioMimeType"`
	ToDepartment  string `json:"toDepartment"`
}

// AnalyzeResponse carries the produced summary text
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}
