package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/scenecast/scenecast-api/compositor"
	"github.com/scenecast/scenecast-api/models"
	"github.com/scenecast/scenecast-api/tasks"
)

// HandleVideoExport processes tasks from QueueVideoExport: it loads the
// project's scenes, runs the timeline compositor, and stores the output
// location on the project record.
func (p *Processor) HandleVideoExport(ctx context.Context, payload string) error {
	var task tasks.ExportTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	log.Printf("Exporting video for project %d (%s)", task.ProjectID, task.Resolution)

	var project models.Project
	if err := p.DB.Preload("Scenes").First(&project, task.ProjectID).Error; err != nil {
		return err
	}

	if len(project.Scenes) == 0 {
		p.DB.Model(&project).Updates(map[string]interface{}{
			"status": models.ProjectStatusFailed, "last_error": "project has no scenes to export",
		})
		return fmt.Errorf("project %d has no scenes", task.ProjectID)
	}

	resolution, err := compositor.ResolutionForTier(task.Resolution)
	if err != nil {
		p.DB.Model(&project).Updates(map[string]interface{}{
			"status": models.ProjectStatusFailed, "last_error": err.Error(),
		})
		return err
	}

	p.DB.Model(&project).Update("status", models.ProjectStatusProcessing)

	clips := make([]compositor.Clip, 0, len(project.Scenes))
	for _, scene := range project.Scenes {
		clips = append(clips, compositor.Clip{
			ImageRef:    scene.ImageURL,
			Duration:    scene.Duration,
			Placeholder: scene.Placeholder,
		})
	}

	outDir := os.Getenv("EXPORT_DIR")
	if outDir == "" {
		outDir = "exports"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("project_%d.mp4", project.ID))

	composer := compositor.NewComposer()
	err = composer.Compose(ctx, clips, task.AudioPath, outPath, resolution, func(percent int, message string) {
		log.Printf("Project %d export: %d%% %s", project.ID, percent, message)
	})
	if err != nil {
		log.Printf("Export failed for project %d: %v", project.ID, err)
		p.DB.Model(&project).Updates(map[string]interface{}{
			"status": models.ProjectStatusFailed, "last_error": err.Error(),
		})
		return err
	}

	updates := map[string]interface{}{
		"status":         models.ProjectStatusCompleted,
		"last_error":     "",
		"video_path":     outPath,
		"video_filename": compositor.OutputFilename(project.Title),
	}
	if err := p.DB.Model(&project).Updates(updates).Error; err != nil {
		return err
	}

	log.Printf("Export complete for project %d: %s", project.ID, outPath)
	return nil
}
