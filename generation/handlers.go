package generation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scenecast/scenecast-api/jobs"
	"github.com/scenecast/scenecast-api/models"
	"github.com/scenecast/scenecast-api/processing"
	"gorm.io/gorm"
)

// Words-per-scene pacing bounds.
const (
	minWordsPerScene     = 10
	maxWordsPerScene     = 120
	defaultWordsPerScene = 40
)

const heartbeatInterval = 15 * time.Second

type Handler struct {
	DB      *gorm.DB
	Manager *jobs.Manager
}

func NewHandler(db *gorm.DB, manager *jobs.Manager) *Handler {
	return &Handler{DB: db, Manager: manager}
}

type CharacterInput struct {
	Name     string `json:"name" binding:"required"`
	Traits   string `json:"traits"`
	ImageURL string `json:"image_url"`
}

type StartGenerationRequest struct {
	Title             string           `json:"title"`
	Text              string           `json:"text" binding:"required"`
	SourceType        string           `json:"source_type"`
	Style             string           `json:"style"`
	NegativePrompt    string           `json:"negative_prompt"`
	SceneDelaySeconds float64          `json:"scene_delay_seconds"`
	WordsPerScene     int              `json:"words_per_scene"`
	Characters        []CharacterInput `json:"characters"`
}

// StartGeneration creates the project record and launches the generation
// job, returning both identifiers immediately.
func (h *Handler) StartGeneration(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req StartGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.SourceType {
	case "":
		req.SourceType = jobs.SourceScript
	case jobs.SourceScript, jobs.SourceSubtitles:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_type must be 'script' or 'subtitles'"})
		return
	}

	if req.WordsPerScene == 0 {
		req.WordsPerScene = defaultWordsPerScene
	}
	if req.WordsPerScene < minWordsPerScene {
		req.WordsPerScene = minWordsPerScene
	}
	if req.WordsPerScene > maxWordsPerScene {
		req.WordsPerScene = maxWordsPerScene
	}

	title := req.Title
	if title == "" {
		title = "Untitled storyboard"
	}

	characters := make([]processing.Character, 0, len(req.Characters))
	for _, ch := range req.Characters {
		characters = append(characters, processing.Character{Name: ch.Name, Traits: ch.Traits, ImageURL: ch.ImageURL})
	}

	// Snapshot the input parameters on the project. Character images are
	// already metadata-only at this point.
	params, err := json.Marshal(req)
	if err != nil {
		log.Printf("Error marshalling generation params: %v", err)
		params = []byte("{}")
	}

	project := models.Project{
		UserID: userID,
		Title:  title,
		Params: string(params),
		Status: models.ProjectStatusProcessing,
	}
	if err := h.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	jobID := h.Manager.Start(jobs.StartRequest{
		OwnerID:        userID,
		ProjectID:      project.ID,
		Text:           req.Text,
		SourceType:     req.SourceType,
		Style:          req.Style,
		NegativePrompt: req.NegativePrompt,
		Characters:     characters,
		SceneDelay:     time.Duration(req.SceneDelaySeconds * float64(time.Second)),
		WordsPerScene:  req.WordsPerScene,
	})

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "project_id": project.ID})
}

// StreamProgress serves the job's event stream over SSE: an immediate
// snapshot, every subsequent progress message, then exactly one terminal
// event before the stream closes. Heartbeats keep idle connections alive.
func (h *Handler) StreamProgress(c *gin.Context) {
	jobID := c.Param("id")

	if _, err := h.authorizedJob(c, jobID); err != nil {
		return
	}

	snapshot, subID, events, err := h.Manager.Subscribe(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	defer h.Manager.Unsubscribe(jobID, subID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Immediate snapshot of the current status.
	c.SSEvent(string(jobs.EventProgress), jobs.Event{
		Type:    jobs.EventProgress,
		Status:  snapshot.Status,
		Message: snapshot.Message,
	})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
			c.Writer.Flush()
			if ev.Type != jobs.EventProgress {
				return
			}
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"ts": time.Now().Unix()})
			c.Writer.Flush()
		}
	}
}

// PollStatus is the stateless alternative to streaming: an in-progress
// snapshot while running, the scene list on completion, or the error on
// failure. Repeated polls after termination return the same payload
// until the job is reaped.
func (h *Handler) PollStatus(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.authorizedJob(c, jobID)
	if err != nil {
		return
	}

	switch job.Status {
	case jobs.StatusCompleted:
		c.JSON(http.StatusOK, gin.H{
			"status":     job.Status,
			"project_id": job.ProjectID,
			"scenes":     job.Scenes,
		})
	case jobs.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": job.Status,
			"error":  job.Error,
		})
	default:
		if time.Since(job.CreatedAt) > jobs.AbandonAfter {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "generation timed out"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  job.Status,
			"message": job.Message,
		})
	}
}

// authorizedJob loads the job and enforces owner-or-admin access. On
// failure it writes the response and returns a non-nil error.
func (h *Handler) authorizedJob(c *gin.Context, jobID string) (jobs.Job, error) {
	job, err := h.Manager.Snapshot(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
		}
		return jobs.Job{}, err
	}

	// The owner needs no lookup; only cross-user access checks the
	// admin flag.
	userID := c.GetUint("user_id")
	if job.OwnerID == userID {
		return job, nil
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return jobs.Job{}, err
	}
	if !user.CanAccessJob(job.OwnerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return jobs.Job{}, jobs.ErrAccessDenied
	}
	return job, nil
}
