package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=banking_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultServerPort = "8080"
const defaultSystemAccountNumber = "0000000001"
const defaultMaxTransferAttempts = 5
const defaultRetryBackoff = 20 * time.Millisecond

type Config struct {
	DatabaseDSN         string
	MigrationsDir       string
	ServerPort          string
	SystemAccountNumber string
	MaxTransferAttempts int
	RetryBackoff        time.Duration
}

func Load() (Config, error) {
	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	port := strings.TrimSpace(os.Getenv("SERVER_PORT"))
	if port == "" {
		port = defaultServerPort
	}

	systemAccountNumber := strings.TrimSpace(os.Getenv("SYSTEM_ACCOUNT_NUMBER"))
	if systemAccountNumber == "" {
		systemAccountNumber = defaultSystemAccountNumber
	}

	maxAttempts := defaultMaxTransferAttempts
	if raw := strings.TrimSpace(os.Getenv("MAX_TRANSFER_ATTEMPTS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxAttempts = parsed
		}
	}

	backoff := defaultRetryBackoff
	if raw := strings.TrimSpace(os.Getenv("RETRY_BACKOFF_MS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			backoff = time.Duration(parsed) * time.Millisecond
		}
	}

	return Config{
		DatabaseDSN:         normalizeConnectionString(conn),
		MigrationsDir:       "migrations",
		ServerPort:          port,
		SystemAccountNumber: systemAccountNumber,
		MaxTransferAttempts: maxAttempts,
		RetryBackoff:        backoff,
	}, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
