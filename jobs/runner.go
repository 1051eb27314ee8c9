package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/scenecast/scenecast-api/models"
	"github.com/scenecast/scenecast-api/processing"
	"github.com/scenecast/scenecast-api/segmenter"
)

// failureSentinel in the input text fails the job before segmentation.
/// QA hook: lets integration tests exercise the failure path end to end.
const failureSentinel = "[force-failure]"

// run executes the full generation pipeline for one job. It is the only
// writer of the job's status, message, and result.
func (m *Manager) run(ctx context.Context, id string, req StartRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Job %s panicked: %v", id, r)
			m.fail(id, req.ProjectID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if strings.Contains(req.Text, failureSentinel) {
		m.fail(id, req.ProjectID, "generation aborted: failure sentinel present in input")
		return
	}

	m.progress(id, "Analyzing narration and planning scenes...")

	scenes, err := m.segment(ctx, req)
	if err != nil {
		m.fail(id, req.ProjectID, err.Error())
		return
	}
	if len(scenes) == 0 {
		m.fail(id, req.ProjectID, processing.ErrEmptySegmentation.Error())
		return
	}

	total := len(scenes)
	for i := range scenes {
		m.progress(id, fmt.Sprintf("Generating visuals for scene %d of %d...", i+1, total))
		m.enrichScene(ctx, &scenes[i], req)
		m.progress(id, fmt.Sprintf("Scene %d of %d ready", i+1, total))

		// Pace external API calls between scenes, but never after the last.
		if i < total-1 && req.SceneDelay > 0 {
			m.progress(id, fmt.Sprintf("Pausing %s before the next scene...", req.SceneDelay))
			time.Sleep(req.SceneDelay)
			m.progress(id, "Resuming generation")
		}
	}

	m.complete(id, req.ProjectID, scenes)
}

// segment produces timed scenes without visuals from either source type.
func (m *Manager) segment(ctx context.Context, req StartRequest) ([]segmenter.Scene, error) {
	if req.SourceType == SourceSubtitles {
		scenes := segmenter.SegmentSubtitles(req.Text, req.WordsPerScene)
		if len(scenes) == 0 {
			return nil, fmt.Errorf("no scenes could be derived from the subtitle file")
		}
		return scenes, nil
	}

	narrations, err := m.segmenter.SegmentScript(ctx, req.Text, req.WordsPerScene)
	if err != nil {
		return nil, fmt.Errorf("script segmentation failed: %w", err)
	}
	return segmenter.ScenesFromNarrations(narrations), nil
}

// enrichScene fills in the visual description and image. Either call may
// fail without aborting the job: a failed description degrades to one
// derived from the narration, a failed image degrades to the placeholder.
func (m *Manager) enrichScene(ctx context.Context, scene *segmenter.Scene, req StartRequest) {
	description, err := m.enricher.DescribeScene(ctx, processing.DescribeRequest{
		Narration:      scene.Narration,
		Style:          req.Style,
		NegativePrompt: req.NegativePrompt,
		Characters:     req.Characters,
	})
	if err != nil {
		log.Printf("Scene %d description failed, using fallback: %v", scene.SceneNumber, err)
		description = processing.FallbackDescription(scene.Narration, req.Style)
	}
	scene.VisualDescription = description

	imageURL, err := m.enricher.GenerateImage(ctx, description, req.Style)
	if err != nil {
		log.Printf("Scene %d image failed, using placeholder: %v", scene.SceneNumber, err)
		scene.ImageURL = processing.PlaceholderImageURL
		scene.Placeholder = true
		return
	}
	scene.ImageURL = imageURL
}

// progress updates the job message and fans it out to subscribers.
func (m *Manager) progress(id, message string) {
	m.store.Update(id, func(j *Job) {
		j.Message = message
	})
	if b := m.broadcaster(id); b != nil {
		b.Publish(Event{Type: EventProgress, Status: StatusRunning, Message: message})
	}
}

func (m *Manager) complete(id string, projectID uint, scenes []segmenter.Scene) {
	message := fmt.Sprintf("Generation completed: %d scenes", len(scenes))
	m.store.Update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Message = message
		j.Scenes = scenes
	})
	if b := m.broadcaster(id); b != nil {
		b.Close(Event{Type: EventCompleted, Status: StatusCompleted, Message: message, SceneCount: len(scenes)})
	}
	m.persistCompleted(projectID, scenes)
}

func (m *Manager) fail(id string, projectID uint, errMsg string) {
	m.store.Update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Message = "Generation failed"
		j.Error = errMsg
	})
	if b := m.broadcaster(id); b != nil {
		b.Close(Event{Type: EventFailed, Status: StatusFailed, Error: errMsg})
	}
	m.persistFailed(projectID, errMsg)
}

// persistCompleted writes the final scene list to the owning project.
// Best effort: a write failure is logged and never blocks the in-memory
// terminal transition.
func (m *Manager) persistCompleted(projectID uint, scenes []segmenter.Scene) {
	if m.db == nil || projectID == 0 {
		return
	}

	records := make([]models.Scene, 0, len(scenes))
	for _, s := range scenes {
		records = append(records, models.Scene{
			ProjectID:         projectID,
			SceneNumber:       s.SceneNumber,
			Narration:         s.Narration,
			Duration:          s.Duration,
			DisplayDuration:   s.DisplayDuration,
			VisualDescription: s.VisualDescription,
			ImageURL:          s.ImageURL,
			Placeholder:       s.Placeholder,
		})
	}

	if err := m.db.Create(&records).Error; err != nil {
		log.Printf("Error persisting scenes for project %d: %v", projectID, err)
	}
	if err := m.db.Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]interface{}{"status": models.ProjectStatusCompleted, "last_error": ""}).Error; err != nil {
		log.Printf("Error updating project %d status: %v", projectID, err)
	}
}

func (m *Manager) persistFailed(projectID uint, errMsg string) {
	if m.db == nil || projectID == 0 {
		return
	}
	if err := m.db.Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]interface{}{"status": models.ProjectStatusFailed, "last_error": errMsg}).Error; err != nil {
		log.Printf("Error updating project %d status: %v", projectID, err)
	}
}
