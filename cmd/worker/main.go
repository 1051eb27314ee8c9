package main

import (
	"context"
	"log"

	"github.com/scenecast/scenecast-api/internal/platform"
	"github.com/scenecast/scenecast-api/tasks"
	"github.com/scenecast/scenecast-api/worker"
)

func main() {
	// Use the shared initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()
	ctx := context.Background()

	processor := worker.NewProcessor(db, rdb)
	processor.Register(tasks.QueueVideoExport, processor.HandleVideoExport)

	log.Println("Worker started, waiting for queue tasks...")
	processor.Listen(ctx, tasks.QueueVideoExport)
}
