package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopease/app/listeners"
	"github.com/shashiranjanraj/shopease/app/tasks"
	"github.com/shashiranjanraj/shopease/internal/server"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/queue"
	"github.com/shashiranjanraj/shopease/pkg/schedule"
)

var (
	queueWorkersFlag int
	scheduleOnceFlag bool
)

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}
		fmt.Printf("Queue worker started on %s (%d workers). Press Ctrl+C to stop.\n", queue.DriverName(), workers)
		wait := queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		wait()
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the task scheduler (or every task once with --once)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		// Expirations fire status events; their mail jobs still get queued.
		listeners.New(app.Repos.Users, nil, nil).Register()
		tasks.Register(schedule.Default(), app.Services)

		fmt.Println("Registered scheduled tasks:")
		for _, t := range schedule.List() {
			fmt.Println("  •", t)
		}

		// A memory queue is invisible to queue:work processes, so the jobs the
		// tasks dispatch are run here.
		local := queue.InProcess()
		if local {
			logger.Warn("schedule: memory queue driver, running queued jobs in this process")
		}

		if scheduleOnceFlag {
			err := schedule.RunAll(ctx)
			if local {
				fmt.Printf("Ran %d queued job(s).\n", queue.Drain(ctx))
			}
			return err
		}

		if local {
			waitQueue := queue.StartWorkers(ctx, 2)
			defer waitQueue()
		}
		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		wait := schedule.Start(ctx)
		<-ctx.Done()
		wait()
		fmt.Println("Scheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
	scheduleRunCmd.Flags().BoolVar(&scheduleOnceFlag, "once", false, "Run every task once and exit")
}
