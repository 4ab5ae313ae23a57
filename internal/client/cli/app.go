package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/config"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/export"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/localdb"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/qr"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/services"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/snapshot"
	"github.com/dmitrijs2005/plaquekeeper/internal/logging"
	"github.com/dmitrijs2005/plaquekeeper/internal/metrics"
	"github.com/go-playground/validator/v10"
)

const (
	ansiDark  = "\033[97;40m"
	ansiReset = "\033[0m"
)

type App struct {
	config   *config.Config
	auth     services.AuthStore
	data     services.DataStore
	exporter export.Exporter
	metrics  *metrics.Metrics
	log      logging.Logger
	validate *validator.Validate
	db       *sql.DB

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the snapshot database and wires the stores, the QR encoder
// and the exporter selected by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database %s: %w", c.DatabasePath, err)
	}

	app, err := newApp(ctx, c, log, snapshot.NewMetadataStore(db, snapshot.WithPassphrase(c.SnapshotPassphrase)))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db

	if c.UseS3() {
		ex, err := export.NewS3Exporter(ctx, export.S3Config{
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.exporter = ex
	}
	return app, nil
}

// newApp builds an App over any snapshot store, exporting to c.ExportDir.
func newApp(ctx context.Context, c *config.Config, log logging.Logger, snap snapshot.Store) (*App, error) {
	m := metrics.NewMetrics(nil)
	opts := []services.Option{
		services.WithLogger(log),
		services.WithMetrics(m),
		services.WithRosterEnrollment(c.EnrollRegistered),
	}

	auth, err := services.NewAuthStore(ctx, snap, opts...)
	if err != nil {
		return nil, err
	}
	data, err := services.NewDataStore(ctx, snap, qr.NewPNGEncoder(c.QRSize), opts...)
	if err != nil {
		return nil, err
	}

	return &App{
		config:   c,
		auth:     auth,
		data:     data,
		exporter: export.NewFileExporter(c.ExportDir),
		metrics:  m,
		log:      log,
		validate: newValidator(),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run starts the console and returns when the user quits or stdin closes.
func (a *App) Run(ctx context.Context) {
	a.println("Gestion des plaques d'immatriculation (tapez 'help' pour les commandes)")
	if a.config.EnrollRegistered {
		a.log.Info(ctx, "roster enrolment enabled")
	}
	runREPL(ctx, a, a.getStatus, &readerLines{r: a.reader})
}

// Close releases the snapshot database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	_, ok := a.auth.CurrentUser()
	return ok
}

func (a *App) isAdmin() bool {
	u, ok := a.auth.CurrentUser()
	return ok && u.IsAdmin()
}

// getStatus renders the prompt status: the signed-in account and its role,
// highlighted when dark mode is on.
func (a *App) getStatus() string {
	s := "anonyme"
	if u, ok := a.auth.CurrentUser(); ok {
		s = fmt.Sprintf("%s %s", u.Email, u.Role)
	}
	s = "(" + s + ")"
	if a.data.DarkMode() {
		s = ansiDark + s + ansiReset
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

func (a *App) confirm(question string) (bool, error) {
	ans, err := a.prompt(question + " (o/n)")
	if err != nil {
		return false, err
	}
	return isYes(ans), nil
}

// fail reports err to the user and the log, and returns it.
func (a *App) fail(ctx context.Context, msg string, err error) error {
	a.println(msg)
	a.log.Error(ctx, msg, "err", err)
	return err
}
