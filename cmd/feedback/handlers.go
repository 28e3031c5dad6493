package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/itchan-dev/feedback/backend/internal/router"
	"github.com/itchan-dev/feedback/backend/internal/setup"
	"github.com/itchan-dev/feedback/backend/internal/storage/sqldb"
	"github.com/itchan-dev/feedback/client/apiclient"
	"github.com/itchan-dev/feedback/client/threadview"
	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/config"
	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/jwt"
	"github.com/itchan-dev/feedback/shared/logger"
)

func runServe(ctx context.Context) error {
	cfg := config.MustLoad(configDir)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Error("closing dependencies", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Public.Port),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(ctx context.Context) error {
	cfg := config.MustLoad(configDir)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	driver, dsn := cfg.DataSource()
	storage, err := sqldb.New(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer storage.Cleanup()

	fmt.Fprintf(os.Stderr, "schema is up to date (%s)\n", driver)
	return nil
}

func runToken(id, name, image string) error {
	cfg := config.MustLoad(configDir)
	if name == "" {
		name = id
	}
	tok, err := jwt.New(cfg.JwtKey(), cfg.JwtTTL()).NewToken(domain.User{Id: id, Name: name, Image: image})
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func runThreads(ctx context.Context, jsonOutput bool) error {
	threads, err := client().GetAllThreads(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(threads)
	}

	if len(threads) == 0 {
		fmt.Println("no threads yet")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTITLE\tAUTHOR\tREPLIES\tVIEWS\tCREATED")
	for _, t := range threads {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			t.Id, t.Category, t.Title, t.Author.Name, t.ReplyCount, t.ViewsCount, t.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func runShow(ctx context.Context, rawId string) error {
	view, err := openView(ctx, rawId)
	if err != nil {
		return err
	}
	if err := view.Mount(ctx); err != nil {
		// the thread is still worth showing
		fmt.Fprintf(os.Stderr, "view not registered: %v\n", err)
	}
	printThread(view.State())
	return nil
}

func runPost(ctx context.Context, title, body, category string) error {
	req := api.CreateThreadRequest{Title: title, Body: body}
	if category != "" {
		c := domain.Category(category)
		req.Category = &c
	}
	id, err := client().CreateThread(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("created thread %d\n", id)
	return nil
}

func runReply(ctx context.Context, rawId, body string) error {
	view, err := openView(ctx, rawId)
	if err != nil {
		return err
	}
	view.SetComposer(body)
	if err := view.Submit(ctx); err != nil {
		return err
	}
	printThread(view.State())
	return nil
}

func runDelete(ctx context.Context, rawId string, reply, hard bool) error {
	id, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", rawId)
	}
	if reply {
		if err := client().DeleteReply(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted reply %d\n", id)
		return nil
	}
	if err := client().DeleteThread(ctx, id, hard); err != nil {
		return err
	}
	fmt.Printf("deleted thread %d\n", id)
	return nil
}

func client() *apiclient.APIClient {
	return apiclient.New(apiURL, token)
}

type stderrNotifier struct{}

func (stderrNotifier) Notify(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func openView(ctx context.Context, rawId string) (*threadview.View, error) {
	id, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid thread id %q", rawId)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	c := client()
	thread, err := c.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}

	markers, err := openMarkers()
	if err != nil {
		return nil, err
	}
	return threadview.New(thread, tokenUser(token), c, stderrNotifier{}, markers, threadview.Options{
		RestoreDraft: false,
		Location:     loc,
	}), nil
}

func openMarkers() (threadview.MarkerStore, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		// no home directory; markers last for this run only
		return threadview.NewMemoryMarkers(), nil
	}
	return threadview.OpenFileMarkers(filepath.Join(dir, "feedback", "views.json"))
}

// tokenUser reads the display fields from the token without verifying it.
// They only label optimistic replies; the server decides who the caller is.
func tokenUser(tok string) domain.User {
	if tok == "" {
		return domain.User{}
	}
	parsed, _, err := gojwt.NewParser().ParseUnverified(tok, gojwt.MapClaims{})
	if err != nil {
		return domain.User{}
	}
	user, err := jwt.UserFromClaims(parsed)
	if err != nil {
		return domain.User{}
	}
	return *user
}

func printThread(s threadview.State) {
	t := s.Thread
	fmt.Printf("#%d [%s] %s\n", t.Id, t.Category, t.Title)
	fmt.Printf("by %s, %s, %d views\n\n", t.Author.Name, t.CreatedAt.Format(time.DateTime), t.ViewsCount)
	fmt.Println(t.Body)
	fmt.Printf("\n%d replies\n", t.ReplyCount)
	for _, r := range t.Replies {
		edited := ""
		if r.UpdatedAt != nil {
			edited = " (edited)"
		}
		fmt.Printf("\n  %d  %s, %s%s\n  %s\n", r.Id, r.Author.Name, r.CreatedAt.Format(time.DateTime), edited, r.Body)
	}
}
