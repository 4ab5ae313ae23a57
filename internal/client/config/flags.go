package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/plaquekeeper/internal/flagx"
)

var knownFlags = []string{"-d", "-o", "-q", "-enroll", "-k", "-l", "-b", "-x", "-g", "-e", "-u", "-p"}

// parseFlags populates Config fields from command-line flags (see the package
// doc for the list). os.Args is filtered with flagx.FilterArgs first, so the
// -c/-config flag and anything unknown is ignored here.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags, "-enroll")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database file")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "QR export directory")
	fs.IntVar(&cfg.QRSize, "q", cfg.QRSize, "QR image size in pixels")
	fs.BoolVar(&cfg.EnrollRegistered, "enroll", cfg.EnrollRegistered, "keep registered accounts able to log in")
	fs.StringVar(&cfg.SnapshotPassphrase, "k", cfg.SnapshotPassphrase, "snapshot encryption passphrase")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for QR exports")
	fs.StringVar(&cfg.S3Prefix, "x", cfg.S3Prefix, "S3 key prefix")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
