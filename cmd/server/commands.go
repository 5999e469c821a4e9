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

    "github.com/prometheus/client_golang/prometheus"
    "github.com/spf13/cobra"

    "github.com/iliyamo/lab-seat-scheduler/internal/apperr"
    "github.com/iliyamo/lab-seat-scheduler/internal/config"
    "github.com/iliyamo/lab-seat-scheduler/internal/handler"
    "github.com/iliyamo/lab-seat-scheduler/internal/metrics"
    "github.com/iliyamo/lab-seat-scheduler/internal/middleware"
    "github.com/iliyamo/lab-seat-scheduler/internal/queue"
    "github.com/iliyamo/lab-seat-scheduler/internal/router"
    "github.com/iliyamo/lab-seat-scheduler/internal/service"
    "github.com/iliyamo/lab-seat-scheduler/internal/utils"
)

func serveCmd() *cobra.Command {
    var withAudit bool
    cmd := &cobra.Command{
        Use:   "serve",
        Short: "Run the HTTP API",
        RunE: func(cmd *cobra.Command, _ []string) error {
            cfg, err := config.Load()
            if err != nil {
                return err
            }
            log := newLogger(cfg)
            ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
            defer stop()

            store, closeStore, err := openStore(ctx, cfg, log, true)
            if err != nil {
                return err
            }
            defer closeStore()

            m, err := metrics.New(prometheus.DefaultRegisterer)
            if err != nil {
                return err
            }
            opts := []service.Option{
                service.WithLocation(cfg.Location),
                service.WithMetrics(m),
                service.WithLogger(log),
            }
            if cfg.EventsEnabled {
                pub := queue.NewAMQPPublisher(cfg.AMQPURL, log.With().Str("component", "events").Logger())
                opts = append(opts, service.WithPublisher(pub))
                if withAudit {
                    audit := &queue.AuditConsumer{URL: cfg.AMQPURL, Dir: cfg.AuditDir, Log: log.With().Str("component", "audit").Logger()}
                    go func() {
                        if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                            log.Error().Err(err).Msg("audit consumer stopped")
                        }
                    }()
                }
            }
            engine := service.NewEngine(store, opts...)

            rdb := config.NewRedisClient(config.LoadRedisConfig())
            if rdb == nil {
                log.Warn().Msg("redis unavailable; response cache off, rate limits per process")
            } else {
                defer rdb.Close()
            }

            e := router.New(handler.NewHandler(engine, log), router.Options{
                JWTSecret: cfg.JWTSecret,
                Redis:     rdb,
                Cache:     config.LoadCacheConfig(),
                RateLimit: config.LoadRateLimitConfig(),
                Log:       log,
            })

            addr := ":" + cfg.Port
            errc := make(chan error, 1)
            go func() {
                log.Info().Str("addr", addr).Str("env", cfg.Env).Str("tz", cfg.Location.String()).Msg("listening")
                if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
                    errc <- err
                }
                close(errc)
            }()

            select {
            case err := <-errc:
                return err
            case <-ctx.Done():
            }
            log.Info().Msg("shutting down")
            sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
            defer cancel()
            return e.Shutdown(sctx)
        },
    }
    cmd.Flags().BoolVar(&withAudit, "audit", true, "also run the audit consumer when events are enabled")
    return cmd
}

func migrateCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "migrate",
        Short: "Create or update the database schema",
        RunE: func(cmd *cobra.Command, _ []string) error {
            cfg, err := config.Load()
            if err != nil {
                return err
            }
            _, closeStore, err := openStore(cmd.Context(), cfg, newLogger(cfg), true)
            if err != nil {
                return err
            }
            closeStore()
            return nil
        },
    }
}

func seedCmd() *cobra.Command {
    var (
        labName string
        rows    int
        perRow  int
    )
    cmd := &cobra.Command{
        Use:   "seed",
        Short: "Create a lab with rows and workstations for local testing",
        RunE: func(cmd *cobra.Command, _ []string) error {
            cfg, err := config.Load()
            if err != nil {
                return err
            }
            log := newLogger(cfg)
            store, closeStore, err := openStore(cmd.Context(), cfg, log, true)
            if err != nil {
                return err
            }
            defer closeStore()
            return seed(cmd.Context(), service.NewEngine(store, service.WithLogger(log)), labName, rows, perRow, cmd)
        },
    }
    cmd.Flags().StringVar(&labName, "lab", "Computing Lab 1", "lab name")
    cmd.Flags().IntVar(&rows, "rows", 3, "number of rows")
    cmd.Flags().IntVar(&perRow, "per-row", 6, "workstations per row")
    return cmd
}

func seed(ctx context.Context, e *service.Engine, labName string, rows, perRow int, cmd *cobra.Command) error {
    labs, err := e.ListLabs(ctx)
    if err != nil {
        return err
    }
    for _, l := range labs {
        if l.Name == labName {
            cmd.Printf("lab %q already exists (id %d)\n", labName, l.ID)
            return nil
        }
    }
    lab, err := e.CreateLab(ctx, labName)
    if err != nil {
        return err
    }
    n := 0
    for r := 0; r < rows; r++ {
        row, err := e.AddRow(ctx, lab.ID, "")
        if err != nil {
            return err
        }
        for p := 0; p < perRow; p++ {
            n++
            _, err := e.AddWorkstation(ctx, service.NewWorkstation{
                RowID:    row.ID,
                Position: p,
                Label:    fmt.Sprintf("%s-%02d", row.Name, p+1),
            })
            if err != nil && !apperr.IsConflict(err) {
                return err
            }
        }
    }
    cmd.Printf("seeded lab %q (id %d) with %d rows and %d workstations\n", lab.Name, lab.ID, rows, n)
    return nil
}

func tokenCmd() *cobra.Command {
    var (
        subject string
        role    string
        ttl     time.Duration
    )
    cmd := &cobra.Command{
        Use:   "token",
        Short: "Mint an operator JWT signed with JWT_SECRET",
        RunE: func(cmd *cobra.Command, _ []string) error {
            secret := os.Getenv("JWT_SECRET")
            if secret == "" {
                return errors.New("JWT_SECRET is not set")
            }
            tok, err := utils.NewOperatorToken(secret, subject, role, ttl)
            if err != nil {
                return err
            }
            cmd.Println(tok.Token)
            return nil
        },
    }
    cmd.Flags().StringVar(&subject, "sub", "operator", "token subject")
    cmd.Flags().StringVar(&role, "role", middleware.RoleOperator, "OPERATOR or ADMIN")
    cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
    return cmd
}
