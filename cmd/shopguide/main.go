package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qiwen/shopguide/ai"
	"github.com/qiwen/shopguide/assist"
	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/internal/version"
	"github.com/qiwen/shopguide/metrics"
	"github.com/qiwen/shopguide/retrieval"
	"github.com/qiwen/shopguide/server"
	"github.com/qiwen/shopguide/store"
	"github.com/qiwen/shopguide/store/db"
	"github.com/qiwen/shopguide/weather"
)

var rootCmd = &cobra.Command{
	Use:   "shopguide",
	Short: `A retrieval-and-generation assistant for shop guides: birthday greetings, weather reminders, holiday greetings and product matching.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory (ignore error if absent).
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:     viper.GetString("mode"),
			Addr:     viper.GetString("addr"),
			Port:     viper.GetInt("port"),
			UNIXSock: viper.GetString("unix-sock"),
			Data:     viper.GetString("data"),
			Driver:   viper.GetString("driver"),
			DSN:      viper.GetString("dsn"),
			Version:  version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return
		}
		storeInstance := store.New(dbDriver, instanceProfile)

		searcher, err := newSearcher(instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to initialize similarity search", "error", err)
			return
		}

		collector := metrics.NewCollector()

		generationService := ai.NewGenerationService(&ai.GenerationConfig{
			APIKey:         instanceProfile.AIAPIKey,
			BaseURL:        instanceProfile.AIBaseURL,
			DirectModel:    instanceProfile.AIDirectModel,
			ReasoningModel: instanceProfile.AIReasoningModel,
			Timeout:        instanceProfile.AITimeout,
		})
		embeddingService := ai.NewEmbeddingService(&ai.EmbeddingConfig{
			APIKey:  instanceProfile.AIAPIKey,
			BaseURL: instanceProfile.AIEmbeddingBaseURL,
			Model:   instanceProfile.AIEmbeddingModel,
		})
		weatherService := weather.NewClient(&weather.Config{
			BaseURL:    instanceProfile.WeatherBaseURL,
			Token:      instanceProfile.WeatherToken,
			OnDegraded: collector.RecordWeatherDegraded,
		})

		dispatcher := assist.NewDispatcher(assist.Dependencies{
			Store:      storeInstance,
			Embedding:  embeddingService,
			Generation: generationService,
			Weather:    weatherService,
			Searcher:   searcher,
			TopK:       instanceProfile.RetrievalTopK,
			Brand:      instanceProfile.Brand,
			Metrics:    collector,
		})

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, dispatcher, collector)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}

		<-ctx.Done()
	},
}

// newSearcher picks the similarity search backend: the flat index file when
// present in the data directory, otherwise the record store's embedding
// table (postgres only).
func newSearcher(p *profile.Profile, s *store.Store) (retrieval.Searcher, error) {
	if _, err := os.Stat(p.VectorIndexPath); err == nil {
		index, err := retrieval.LoadFlatIndex(p.VectorIndexPath, p.IDMapPath)
		if err != nil {
			return nil, err
		}
		slog.Info("vector index loaded",
			"path", p.VectorIndexPath,
			"vectors", index.Size(),
			"dimensions", index.Dimensions(),
		)
		return index, nil
	}

	if p.Driver == "postgres" {
		slog.Info("vector index file not found, using in-database vector search")
		return retrieval.NewStoreSearcher(s), nil
	}
	return nil, fmt.Errorf("vector index %s not found and driver %q has no vector search", p.VectorIndexPath, p.Driver)
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 8080)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("unix-sock", "", "path to the unix socket, overrides --addr and --port")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")

	for _, flag := range []string{"mode", "addr", "port", "unix-sock", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("shopguide")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("shopguide %s started\n", profile.Version)
	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)

	if profile.UNIXSock != "" {
		fmt.Printf("Server running on unix socket: %s\n", profile.UNIXSock)
		return
	}
	if profile.Addr == "" {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
