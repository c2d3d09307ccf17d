package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/team-roster/internal/config"
	"github.com/jakechorley/team-roster/pkg/api"
	"github.com/jakechorley/team-roster/pkg/clients/authclient"
	"github.com/jakechorley/team-roster/pkg/core/dates"
	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/core/roster"
	"github.com/jakechorley/team-roster/pkg/db"
	"github.com/jakechorley/team-roster/pkg/metrics"
	"github.com/jakechorley/team-roster/pkg/postgres"
	"github.com/jakechorley/team-roster/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roster",
		Short: "Team roster - manage team assignments and absence",
		Long:  `A server and admin CLI for team roster scheduling: assignment cycling, absence tracking and roster date generation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(migrateDatesCmd())
	rootCmd.AddCommand(datesCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(loginCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and configuration
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.logger, err = logging.InitLogger(env, app.cfg.Log.Dir, app.cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	return nil
}

// openDatabase connects to Postgres and wraps it in the repository layer.
// The caller closes the returned store.
func openDatabase(ctx context.Context) (*postgres.DB, *db.DB, error) {
	app.logger.Info("Connecting to database")
	store, err := postgres.NewDB(ctx, app.cfg.Database.URL, app.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, db.New(store), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the roster HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, database, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			rosterStore := roster.NewStore()
			m := metrics.New(rosterStore.DirtyCount)

			writer := roster.NewWriter(database, app.logger, roster.WriterOptions{
				Recorder: m,
			})
			editor := roster.NewEditor(rosterStore, writer, app.logger)

			// Load the current roster so reads are served from memory.
			entries, err := database.ListEntries(ctx)
			if err != nil {
				return fmt.Errorf("failed to load roster entries: %w", err)
			}
			for date, entry := range entries {
				rosterStore.ApplySnapshot(date, entry)
			}
			app.logger.Info("Roster loaded", zap.Int("entries", len(entries)))

			// Mirror remote changes into the synced view. Dirty entries
			// keep shadowing until saved or discarded.
			events, err := database.WatchEntries(ctx)
			if err != nil {
				return fmt.Errorf("failed to watch roster entries: %w", err)
			}
			go func() {
				for event := range events {
					if event.Deleted {
						rosterStore.RemoveSynced(event.Date)
						continue
					}
					rosterStore.ApplySnapshot(event.Date, event.Entry)
				}
			}()

			handler := api.NewRouter(api.RouterDeps{
				Editor:  editor,
				Store:   rosterStore,
				DB:      database,
				Metrics: m,
				Logger:  app.logger,
			})

			server := &http.Server{
				Addr:    app.cfg.Addr(),
				Handler: handler,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			app.logger.Info("Server listening", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}

			app.logger.Info("Shutting down, flushing pending writes")
			writer.Flush()

			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openDatabase(app.ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.RunMigrations(app.ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func migrateDatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrateDates",
		Short: "Rewrite legacy DD-MM-YYYY entry IDs to ISO dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, database, err := openDatabase(app.ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			migrated, err := database.MigrateDateIDs(app.ctx, app.logger)
			if err != nil {
				return fmt.Errorf("failed to migrate entry dates: %w", err)
			}

			fmt.Printf("Migrated %d roster entries.\n", migrated)
			return nil
		},
	}
}

func datesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates <team>",
		Short: "List a team's roster dates for the rest of the year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")

			store, database, err := openDatabase(app.ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			team, err := database.GetTeam(app.ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load team: %w", err)
			}

			var rosterDates []string
			if year > 0 {
				rosterDates, err = dates.ForYear(team.Weekdays(), year)
			} else {
				rosterDates, err = dates.Upcoming(team.Weekdays(), time.Now())
			}
			if err != nil {
				return fmt.Errorf("failed to generate dates: %w", err)
			}

			fmt.Printf("\n%s meets on %d dates:\n\n", team.Name, len(rosterDates))
			for i, date := range rosterDates {
				fmt.Printf("  %2d. %s\n", i+1, date)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("year", 0, "Generate dates for a specific calendar year")

	return cmd
}

// seedFile is the YAML shape the seed command reads.
type seedFile struct {
	Teams []model.Team `yaml:"teams"`
	Users []seedUser   `yaml:"users"`
}

type seedUser struct {
	UID  string        `yaml:"uid"`
	User model.AppUser `yaml:",inline"`
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load teams and users from a YAML file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}

			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("failed to parse seed file: %w", err)
			}

			store, database, err := openDatabase(app.ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(seed.Teams) > 0 {
				if err := database.SaveTeams(app.ctx, seed.Teams); err != nil {
					return fmt.Errorf("failed to save teams: %w", err)
				}
			}

			if len(seed.Users) > 0 {
				users := make(map[string]*model.AppUser, len(seed.Users))
				for i := range seed.Users {
					users[seed.Users[i].UID] = &seed.Users[i].User
				}
				if err := database.SaveUsers(app.ctx, users); err != nil {
					return fmt.Errorf("failed to save users: %w", err)
				}
			}

			fmt.Printf("Seeded %d teams and %d users.\n", len(seed.Teams), len(seed.Users))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google and register the account as a roster user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oauthCfg, err := config.LoadOAuthClientWithEnv(env)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}

			client := authclient.NewClient(oauthCfg)
			identity, err := client.SignIn(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			app.logger.Info("Signed in",
				zap.String("uid", identity.UID),
				zap.String("email", identity.Email))

			store, database, err := openDatabase(app.ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := database.GetUser(app.ctx, identity.UID)
			if err != nil {
				if !errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("failed to look up user: %w", err)
				}
				// First sign-in: registered but unapproved until an admin
				// approves the account.
				user = &model.AppUser{IsActive: true}
			}

			user.Name = identity.Name
			user.Email = identity.Email

			if err := database.SaveUser(app.ctx, identity.UID, user); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			fmt.Printf("\nSigned in as %s (%s)\n", identity.Name, identity.Email)
			if !user.IsApproved {
				fmt.Println("Account is awaiting admin approval.")
			}

			return nil
		},
	}
}
