package tasks

import "encoding/json"

// ---
// QUEUE DEFINITIONS
// ---
// We define all queue names as constants here.
const (
	// QueueVideoExport renders a completed project's scenes into a video.
	QueueVideoExport = "q_video_export"
)

// ---
// TASK PAYLOADS
// ---
// These are the structs that will be JSON-marshalled and sent to Redis.

// ExportTaskPayload is the payload for QueueVideoExport
type ExportTaskPayload struct {
	ProjectID  uint   `json:"project_id"`
	Resolution string `json:"resolution"`
	AudioPath  string `json:"audio_path,omitempty"`
}

// ---
// HELPER FUNCTIONS
// ---

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
