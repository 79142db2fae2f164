package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	_ "workorder_dashboard/docs"
	"workorder_dashboard/internal/handlers"
	"workorder_dashboard/internal/logger"
	"workorder_dashboard/internal/repository"
	"workorder_dashboard/internal/server"
	"workorder_dashboard/internal/service"
	"workorder_dashboard/internal/stream"
	"workorder_dashboard/internal/upstream"
)

const defaultSimTick = 1 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB (cross-reload snapshot cache)
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// optionally run the embedded workflow simulator as the upstream
	runSimulator(log)

	// wire dependencies
	repos := repository.NewRepository(db)
	upstreamClient := upstream.NewClient(viper.GetString("upstream.base_url"))
	manager := stream.NewManager(
		&stream.WSDialer{
			BaseURL: viper.GetString("upstream.base_url"),
			Filter: stream.Filter{
				Level: viper.GetString("upstream.filter.level"),
				Step:  viper.GetString("upstream.filter.step"),
			},
		},
		repos.Snapshots,
		log,
		stream.Options{
			BufferSize:  viper.GetInt("stream.buffer_size"),
			BackoffBase: viper.GetDuration("stream.backoff_base"),
			BackoffMax:  viper.GetDuration("stream.backoff_max"),
		},
	)
	services := service.NewService(manager, upstreamClient)
	apiHandler := handlers.NewHandler(services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, manager, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// runSimulator starts the embedded fake executor when upstream.simulate is
// set, for local development without a real work-order executor.
func runSimulator(log *logger.Logger) {
	if !viper.GetBool("upstream.simulate") {
		return
	}
	tick := viper.GetDuration("upstream.sim_tick")
	if tick <= 0 {
		tick = defaultSimTick
	}
	sim := upstream.NewSimulator(tick, log)
	go func() {
		port := viper.GetString("upstream.sim_port")
		if port == "" {
			port = "9090"
		}
		log.Infow("starting workflow simulator", "port", port)
		simSrv := &server.Server{}
		if err := simSrv.Run(port, sim.Routes()); err != nil {
			log.Fatalw("error starting simulator", "err", err)
		}
	}()
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful
// shutdown: streams are torn down first so their buffers get snapshotted.
func waitForShutdown(srv *server.Server, manager *stream.Manager, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// close upstream streams and persist their buffers
	manager.DisconnectAll()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
