package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/common"
	"github.com/jrsteele09/go-notes-server/fruits"
	"github.com/jrsteele09/go-notes-server/gql"
	"github.com/jrsteele09/go-notes-server/internal/config"
	"github.com/jrsteele09/go-notes-server/internal/metrics"
	"github.com/jrsteele09/go-notes-server/locks"
	"github.com/jrsteele09/go-notes-server/notes"
	fakenoterepo "github.com/jrsteele09/go-notes-server/notes/repofake"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/server"
	"github.com/jrsteele09/go-notes-server/social"
	"github.com/jrsteele09/go-notes-server/store/pg"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	fakeuserrepo "github.com/jrsteele09/go-notes-server/users/repofake"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cacheCleanupInterval = time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, closeAll, err := build(ctx, c)
	if err != nil {
		return err
	}
	defer closeAll()

	server := &http.Server{Addr: c.GetPort(), Handler: handler}
	go func() {
		if err := listenAndServe(server); err != nil {
			log.Error().Err(err).Msg("listener stopped")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(server)
	return returnError
}

// setupLogging configures the global logger once: console output in DEV,
// JSON everywhere else.
func setupLogging(c config.EnvConfig) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// build wires every service behind the HTTP handler. The returned func
// releases the connections it opened.
func build(ctx context.Context, c config.Config) (http.Handler, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	cache, closeCache, err := newCache(ctx, c)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, closeCache)

	userRepo, noteRepo, closeDB, err := newRepos(ctx, c)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}
	closers = append(closers, closeDB)

	limiter := locks.NewLimiter(cache, locks.WithRecorder(collector))
	tokens := token.New(token.NewCodec(token.NewHMACSigner(c.GetSecretKey(), c.GetSecretKeyFallbacks()...)), token.WithTokenConfig(c))
	authn := auth.NewAuthenticator(tokens, userRepo,
		auth.WithKeyword(c.GetAuthHeaderKeyword()),
		auth.WithFailureRecorder(collector),
	)

	accountService := accounts.NewService(userRepo, noteRepo, tokens, authn, limiter,
		accounts.WithSocialRegistry(newSocialRegistry(c)),
		accounts.WithMailer(accounts.NewLogMailer(accounts.DefaultPasswdURL)),
		accounts.WithFileStore(accounts.NewDiskStore(c.GetDataFolder(), c.GetBaseURL()+"/files")),
	)
	commonService := common.NewService(limiter, fruits.NewCatalog(), time.Now)

	schema, err := gql.NewSchema(gql.Resolvers{
		Accounts: accountService,
		Common:   commonService,
		Engine: pagination.NewEngine(
			pagination.WithMaxLimit(c.GetGQLConnectionLimit()),
			pagination.WithFirstOrLastRequired(true),
		),
	})
	if err != nil {
		closeAll()
		return nil, func() {}, errors.Wrap(err, "build schema")
	}

	s := server.New(c, server.Services{
		Users:    userRepo,
		Accounts: accountService,
		Common:   commonService,
		Authn:    authn,
		GraphQL:  gql.NewHandler(schema, gql.LimitsFromConfig(c), gql.WithIntrospectionCache(gql.NewIntrospectionCache())),
	},
		server.WithMetrics(collector, registry),
		server.WithMediaFolder(c.GetDataFolder()),
	)
	if err := s.InitialiseSystem(ctx, c); err != nil {
		closeAll()
		return nil, func() {}, err
	}
	return s, closeAll, nil
}

// newCache uses redis when REDIS_ADDR is set and an in process cache otherwise.
func newCache(ctx context.Context, c config.CacheConfig) (locks.Cache, func(), error) {
	if c.GetRedisAddr() == "" {
		cache := locks.NewMemoryCache()
		go cache.Run(ctx, cacheCleanupInterval)
		log.Info().Msg("using in memory lock cache")
		return cache, func() {}, nil
	}

	cache, err := locks.NewRedisCache(
		locks.WithAddr(c.GetRedisAddr()),
		locks.WithPassword(c.GetRedisPassword()),
		locks.WithDatabase(c.GetRedisDB()),
	)
	if err != nil {
		return nil, func() {}, errors.Wrap(err, "newCache")
	}
	if err := cache.Ping(ctx); err != nil {
		_ = cache.Close()
		return nil, func() {}, errors.Wrap(err, "newCache ping")
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("using redis lock cache")
	return cache, func() { _ = cache.Close() }, nil
}

// newRepos uses postgres when DATABASE_URL is set and in memory repos otherwise.
func newRepos(ctx context.Context, c config.DatabaseConfig) (users.UserRepo, notes.Repo, func(), error) {
	dsn := c.GetDatabaseURL()
	if dsn == "" {
		log.Warn().Msg("DATABASE_URL not set, data is kept in memory")
		return fakeuserrepo.NewFakeUserRepo(), fakenoterepo.NewFakeNoteRepo(), func() {}, nil
	}

	if c.GetRunMigrations() {
		if err := pg.Migrate(dsn); err != nil {
			return nil, nil, func() {}, err
		}
	}
	db, err := pg.Open(ctx, dsn)
	if err != nil {
		return nil, nil, func() {}, err
	}
	return pg.NewUserRepo(db), pg.NewNoteRepo(db), func() { _ = db.Close() }, nil
}

func newSocialRegistry(c config.Config) *social.Registry {
	registry := social.NewRegistry()
	registry.Register("google", social.NewGoogle(social.WithGoogleIssuer(c.GetGoogleIssuer())))
	registry.Register("facebook", social.NewFacebook(social.WithGraphURL(c.GetFacebookGraphURL())))
	if c.GetEnv() == "DEV" {
		registry.Register("dummy", social.Dummy{})
	}
	return registry
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
