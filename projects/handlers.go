package projects

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/scenecast/scenecast-api/compositor"
	"github.com/scenecast/scenecast-api/models"
	"github.com/scenecast/scenecast-api/tasks"
	"gorm.io/gorm"
)

type Handler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{DB: db, Redis: rdb}
}

type ExportRequest struct {
	Resolution string `json:"resolution" binding:"required"`
	AudioPath  string `json:"audio_path"`
}

func (h *Handler) GetUserProjects(c *gin.Context) {
	userID := c.GetUint("user_id")
	var projects []models.Project
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// ExportProject queues a video render for a completed project. The
// worker picks the task up from Redis and runs the compositor.
func (h *Handler) ExportProject(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := compositor.ResolutionForTier(req.Resolution); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(project.Scenes) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Project has no scenes to export"})
		return
	}

	task := tasks.ExportTaskPayload{
		ProjectID:  project.ID,
		Resolution: req.Resolution,
		AudioPath:  req.AudioPath,
	}
	payload, err := tasks.Marshal(task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoExport, payload).Err(); err != nil {
		log.Printf("Error pushing export task for project %d: %v", project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export"})
		return
	}

	h.DB.Model(&project).Update("status", models.ProjectStatusProcessing)
	c.JSON(http.StatusAccepted, gin.H{"message": "Export queued", "project_id": project.ID})
}

// DownloadExport streams the rendered video with its friendly filename.
func (h *Handler) DownloadExport(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}

	if project.VideoPath == "" || project.Status != models.ProjectStatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "No exported video available"})
		return
	}

	filename := project.VideoFilename
	if filename == "" {
		filename = "storyboard.mp4"
	}
	c.FileAttachment(project.VideoPath, filename)
}

// ownedProject loads the :id project and verifies ownership, writing the
// error response itself when the lookup fails.
func (h *Handler) ownedProject(c *gin.Context) (models.Project, bool) {
	projectIDStr := c.Param("id")
	projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return models.Project{}, false
	}

	userID := c.GetUint("user_id")

	var project models.Project
	if err := h.DB.Preload("Scenes").First(&project, "id = ? AND user_id = ?", projectID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return models.Project{}, false
	}
	return project, true
}
