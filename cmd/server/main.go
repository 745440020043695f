package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/auth/google"
	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
	"github.com/jrsteele09/ipo-auth-server/captcha"
	"github.com/jrsteele09/ipo-auth-server/internal/config"
	"github.com/jrsteele09/ipo-auth-server/internal/ratelimit"
	"github.com/jrsteele09/ipo-auth-server/ipos"
	"github.com/jrsteele09/ipo-auth-server/ipos/mongorepo"
	"github.com/jrsteele09/ipo-auth-server/mailer"
	"github.com/jrsteele09/ipo-auth-server/server"
	"github.com/jrsteele09/ipo-auth-server/storage"
	"github.com/jrsteele09/ipo-auth-server/storage/memstore"
	"github.com/jrsteele09/ipo-auth-server/storage/s3store"
	usermongo "github.com/jrsteele09/ipo-auth-server/users/mongorepo"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("could not load .env")
	}
	c := config.New()
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !c.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.Validate(c); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	app, err := wire(ctx, c)
	if err != nil {
		return err
	}
	defer app.close()

	srv, err := server.New(c, app.deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// application holds the wired services and the connections to release on exit.
type application struct {
	deps    server.Deps
	closers []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func wire(ctx context.Context, c config.Config) (*application, error) {
	app := &application{}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(c.GetMongoURI()))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	app.closers = append(app.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	})
	if err := mongoClient.Ping(ctx, nil); err != nil {
		app.close()
		return nil, fmt.Errorf("mongo.Ping: %w", err)
	}
	db := mongoClient.Database(c.GetMongoDatabase())
	log.Info().Str("database", c.GetMongoDatabase()).Msg("connected to MongoDB")

	userRepo, err := usermongo.NewUserRepo(ctx, db)
	if err != nil {
		app.close()
		return nil, err
	}

	var (
		sessionRepo sessions.Repo
		stateStore  statetoken.Store
		limiter     ratelimit.Limiter
	)
	stateOpts := []statetoken.Option{statetoken.WithTTL(c.GetStateTokenTTL())}

	if redisURL := c.GetRedisURL(); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		rdb := redis.NewClient(opts)
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			app.close()
			return nil, fmt.Errorf("redis.Ping: %w", err)
		}
		log.Info().Msg("connected to Redis")

		sessionRepo = sessions.NewRedisRepo(rdb)
		stateStore = statetoken.NewRedisStore(rdb, stateOpts...)
		limiter = ratelimit.NewRedisLimiter(rdb, c.GetRateLimitMax(), c.GetRateLimitWindow())
	} else {
		mongoSessions, err := sessions.NewMongoRepo(ctx, db)
		if err != nil {
			app.close()
			return nil, err
		}
		sessionRepo = mongoSessions
		stateStore = statetoken.NewInMemoryStore(stateOpts...)
		inMemoryLimiter := ratelimit.NewInMemoryLimiter(c.GetRateLimitMax(), c.GetRateLimitWindow())
		app.closers = append(app.closers, sweepEvery(c.GetRateLimitWindow(), inMemoryLimiter.Sweep))
		limiter = inMemoryLimiter
	}

	store, err := newObjectStore(ctx, c)
	if err != nil {
		app.close()
		return nil, err
	}

	provider, err := google.NewProvider(ctx, c)
	if err != nil {
		app.close()
		return nil, err
	}
	smtpMailer, err := mailer.NewSMTPMailer(c)
	if err != nil {
		app.close()
		return nil, err
	}

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Sessions: sessionRepo, States: stateStore},
		smtpMailer,
		provider,
		auth.WithSessionTTL(c.GetSessionTTL(), c.GetRememberMeTTL()),
		auth.WithResetTokenTTL(c.GetResetTokenTTL()),
		auth.WithResetLinkBase(c.GetFrontendURL()),
	)
	if err != nil {
		app.close()
		return nil, err
	}

	ipoService, err := ipos.NewService(mongorepo.NewIPORepo(db), store)
	if err != nil {
		app.close()
		return nil, err
	}

	cookies, err := sessions.NewCookieCodec(c.GetSessionSecret())
	if err != nil {
		app.close()
		return nil, err
	}

	app.deps = server.Deps{
		Auth:    authService,
		IPOs:    ipoService,
		Cookies: cookies,
		Limiter: limiter,
	}
	if secret := c.GetReCaptchaSecret(); secret != "" {
		verifier, err := captcha.NewReCaptcha(secret)
		if err != nil {
			app.close()
			return nil, err
		}
		app.deps.Captcha = verifier
	}
	return app, nil
}

// newObjectStore uses S3 when a bucket is configured and keeps logos in
// memory otherwise.
func newObjectStore(ctx context.Context, c config.Config) (storage.ObjectStore, error) {
	if c.GetS3Bucket() == "" {
		log.Warn().Msg("S3_BUCKET not set, company logos are kept in memory")
		return memstore.New(), nil
	}
	store, err := s3store.New(ctx, c)
	if err != nil {
		return nil, err
	}
	log.Info().Str("bucket", c.GetS3Bucket()).Msg("using S3 logo storage")
	return store, nil
}

// sweepEvery runs fn on a ticker until the returned stop func is called.
func sweepEvery(every time.Duration, fn func()) func() {
	ticker := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
