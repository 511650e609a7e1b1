package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the attendance HTTP service and the rollover scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	r := mux.NewRouter()
	handler.NewAttendanceHandler(a.svc, a.resolver, a.exporter, a.loc).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      handler.LoggingMiddleware(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Rollover ticks once a minute; correctness relies only on the job's
	// idempotence inside its 07:00-07:10 window, not on tick frequency.
	schedCtx, stopSched := context.WithCancel(ctx)
	defer stopSched()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-schedCtx.Done():
				return
			case now := <-ticker.C:
				summary, err := a.rollover.Run(schedCtx, now)
				if err != nil {
					log.Printf("rollover tick: %v", err)
					continue
				}
				if summary.Ran {
					log.Printf("rollover %s: closed=%d clock_outs=%d resets=%d errors=%d",
						summary.Date, summary.ActivitiesClosed, summary.AutoClockOuts,
						summary.AllocationsReset, summary.Errors)
				}
			}
		}
	}()

	go func() {
		log.Printf("Attendance service started on :%s (env: %s, tz: %s)",
			a.cfg.Port, a.cfg.Env, a.cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
