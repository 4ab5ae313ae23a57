// Package config loads runtime configuration for the plaque CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with PLAQUES_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   SQLite database file holding the snapshots
//	-o string   directory QR images are exported to
//	-q int      QR image size in pixels
//	-enroll     let registered accounts log in again after logout
//	-k string   passphrase encrypting the snapshots at rest
//	-l string   log level (debug, info, warn, error)
//	-b string   S3 bucket for QR exports; enables the S3 exporter
//	-x string   key prefix inside the bucket
//	-g string   S3 region
//	-e string   S3 base endpoint (MinIO and other compatible servers)
//	-u string   S3 access key
//	-p string   S3 secret key
//
// # JSON schema
//
//	{
//	  "database_path": "plaques.db",
//	  "export_dir": "qr-exports",
//	  "qr_size": 256,
//	  "enroll_registered": false,
//	  "snapshot_passphrase": "",
//	  "log_level": "info",
//	  "s3_bucket": "",
//	  "s3_prefix": "",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "",
//	  "s3_access_key": "",
//	  "s3_secret_key": ""
//	}
//
// # Environment
//
// PLAQUES_DATABASE_PATH, PLAQUES_EXPORT_DIR, PLAQUES_QR_SIZE,
// PLAQUES_ENROLL_REGISTERED, PLAQUES_SNAPSHOT_PASSPHRASE, PLAQUES_LOG_LEVEL,
// PLAQUES_S3_BUCKET, PLAQUES_S3_PREFIX, PLAQUES_S3_REGION,
// PLAQUES_S3_BASE_ENDPOINT, PLAQUES_S3_ACCESS_KEY, PLAQUES_S3_SECRET_KEY.
package config
