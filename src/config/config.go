package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/username/foliomap/src/errs"
	"github.com/username/foliomap/src/logger"
	"github.com/username/foliomap/src/security/validation"
)

// DefaultSettingsPath is tried when no settings file is named explicitly.
// A missing file at this default location is not an error; the gsheets
// connection settings then come from environment variables instead.
const DefaultSettingsPath = "settings.toml"

const (
	defaultWorksheet          = "holdings"
	defaultServiceAccountPath = "data/private/service_account.json"
	defaultOutputDir          = "outputs"
	defaultPort               = 8080
	defaultCacheTTL           = 5 * time.Minute
)

// Schema declares which worksheet columns feed each Holding field. The
// column set is configuration, not a hardcoded constant; defaults match the
// canonical holdings worksheet.
type Schema struct {
	RegionColumn     string
	AssetClassColumn string
	SymbolColumn     string
	NameColumn       string
	ValueColumn      string
}

// DefaultSchema returns the canonical five-column holdings schema.
func DefaultSchema() Schema {
	return Schema{
		RegionColumn:     "投資地區",
		AssetClassColumn: "資產類別",
		SymbolColumn:     "代號",
		NameColumn:       "名稱",
		ValueColumn:      "總市值(TWD)",
	}
}

// Required lists the worksheet columns that must be present, in declaration
// order. The asset-class column may be declared empty, which removes that
// level from the sunburst hierarchy and from the required set.
func (s Schema) Required() []string {
	cols := []string{s.RegionColumn}
	if s.AssetClassColumn != "" {
		cols = append(cols, s.AssetClassColumn)
	}
	return append(cols, s.SymbolColumn, s.NameColumn, s.ValueColumn)
}

// HasAssetClass reports whether the hierarchy includes an asset-class level.
func (s Schema) HasAssetClass() bool { return s.AssetClassColumn != "" }

// GSheets holds the connection settings for the holdings worksheet.
type GSheets struct {
	SpreadsheetID          string
	Worksheet              string
	ServiceAccountJSONPath string
}

// Server holds the dashboard options.
type Server struct {
	Port               int
	CORSAllowedOrigins []string
	CacheTTL           time.Duration
}

// Export holds the file-export options.
type Export struct {
	OutputDir string
}

// Delivery holds the report delivery (email) options. Provider selects the
// backend: "mailgun", "smtp" or "mock".
type Delivery struct {
	Provider             string
	MailgunDomain        string
	MailgunPrivateAPIKey string
	SMTPServer           string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SenderEmail          string
	SenderName           string
	Recipient            string
}

// Config is the fully resolved application configuration. It is built once
// by Load and passed explicitly into every stage; nothing reads settings
// globally after startup.
type Config struct {
	GSheets  GSheets
	Schema   Schema
	Server   Server
	Export   Export
	Delivery Delivery
	LogLevel string

	// Source records where the gsheets connection settings came from,
	// for diagnostics ("settings file (...)" or "environment variables").
	Source string
}

// settingsFile mirrors the TOML layout. Schema columns are pointers so an
// explicitly empty asset_class_column can be told apart from an absent one.
type settingsFile struct {
	LogLevel string `toml:"log_level"`
	GSheets  struct {
		SpreadsheetID          string `toml:"spreadsheet_id"`
		Worksheet              string `toml:"worksheet"`
		ServiceAccountJSONPath string `toml:"service_account_json_path"`
	} `toml:"gsheets"`
	Schema *struct {
		RegionColumn     *string `toml:"region_column"`
		AssetClassColumn *string `toml:"asset_class_column"`
		SymbolColumn     *string `toml:"symbol_column"`
		NameColumn       *string `toml:"name_column"`
		ValueColumn      *string `toml:"value_column"`
	} `toml:"schema"`
	Server struct {
		Port               int      `toml:"port"`
		CacheTTLSeconds    int      `toml:"cache_ttl_seconds"`
		CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	} `toml:"server"`
	Export struct {
		OutputDir string `toml:"output_dir"`
	} `toml:"export"`
	Delivery struct {
		Provider             string `toml:"provider"`
		MailgunDomain        string `toml:"mailgun_domain"`
		MailgunPrivateAPIKey string `toml:"mailgun_private_api_key"`
		SMTPServer           string `toml:"smtp_server"`
		SMTPPort             int    `toml:"smtp_port"`
		SMTPUser             string `toml:"smtp_user"`
		SMTPPassword         string `toml:"smtp_password"`
		SenderEmail          string `toml:"sender_email"`
		SenderName           string `toml:"sender_name"`
		Recipient            string `toml:"recipient"`
	} `toml:"delivery"`
}

// Load resolves the configuration. The settings file wins for the gsheets
// connection settings when it exists; otherwise the GSPREAD_* environment
// variables are the fallback. Ambient options (port, log level, output dir,
// delivery) are always environment-overridable, with the file taking
// precedence when it sets them. An explicitly named settings file must
// exist; the default location may be absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.L.Debug(".env file loaded")
	}

	cfg := &Config{
		GSheets: GSheets{
			Worksheet:              defaultWorksheet,
			ServiceAccountJSONPath: defaultServiceAccountPath,
		},
		Schema: DefaultSchema(),
		Server: Server{
			Port:               getEnvAsInt("PORT", defaultPort),
			CacheTTL:           getEnvAsDuration("CACHE_TTL", defaultCacheTTL),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		Export: Export{
			OutputDir: getEnv("OUTPUT_DIR", defaultOutputDir),
		},
		Delivery: Delivery{
			Provider:             getEnv("DELIVERY_PROVIDER", "mock"),
			MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
			MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),
			SMTPServer:           getEnv("SMTP_SERVER", ""),
			SMTPPort:             getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:             getEnv("SMTP_USER", ""),
			SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
			SenderEmail:          getEnv("SENDER_EMAIL", "noreply@example.com"),
			SenderName:           getEnv("SENDER_NAME", "Foliomap"),
			Recipient:            getEnv("REPORT_RECIPIENT", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	explicit := path != ""
	if path == "" {
		path = DefaultSettingsPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applySettingsFile(cfg, data, path); err != nil {
			return nil, err
		}
		cfg.Source = fmt.Sprintf("settings file (%s)", path)
	case os.IsNotExist(err) && !explicit:
		cfg.GSheets.SpreadsheetID = getEnv("GSPREAD_SHEET_ID", "")
		cfg.GSheets.Worksheet = getEnv("GSPREAD_WORKSHEET", defaultWorksheet)
		cfg.GSheets.ServiceAccountJSONPath = getEnv("GSPREAD_SERVICE_ACCOUNT_JSON_PATH", defaultServiceAccountPath)
		cfg.Source = "environment variables"
	case os.IsNotExist(err):
		return nil, errs.Newf(errs.KindConfig, "settings file %s not found", path)
	default:
		return nil, errs.Wrap(errs.KindConfig, fmt.Sprintf("reading settings file %s", path), err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	logger.L.Info("Configuration loaded",
		"source", cfg.Source,
		"worksheet", cfg.GSheets.Worksheet,
		"outputDir", cfg.Export.OutputDir,
		"deliveryProvider", cfg.Delivery.Provider)
	return cfg, nil
}

func applySettingsFile(cfg *Config, data []byte, path string) error {
	var sf settingsFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return errs.Wrap(errs.KindConfig, fmt.Sprintf("parsing settings file %s", path), err)
	}

	cfg.GSheets.SpreadsheetID = sf.GSheets.SpreadsheetID
	if sf.GSheets.Worksheet != "" {
		cfg.GSheets.Worksheet = sf.GSheets.Worksheet
	}
	if sf.GSheets.ServiceAccountJSONPath != "" {
		cfg.GSheets.ServiceAccountJSONPath = sf.GSheets.ServiceAccountJSONPath
	}

	if sf.Schema != nil {
		applyColumn := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
			}
		}
		applyColumn(&cfg.Schema.RegionColumn, sf.Schema.RegionColumn)
		applyColumn(&cfg.Schema.AssetClassColumn, sf.Schema.AssetClassColumn)
		applyColumn(&cfg.Schema.SymbolColumn, sf.Schema.SymbolColumn)
		applyColumn(&cfg.Schema.NameColumn, sf.Schema.NameColumn)
		applyColumn(&cfg.Schema.ValueColumn, sf.Schema.ValueColumn)
	}

	if sf.LogLevel != "" {
		cfg.LogLevel = sf.LogLevel
	}
	if sf.Server.Port != 0 {
		cfg.Server.Port = sf.Server.Port
	}
	if sf.Server.CacheTTLSeconds > 0 {
		cfg.Server.CacheTTL = time.Duration(sf.Server.CacheTTLSeconds) * time.Second
	}
	if sf.Server.CORSAllowedOrigins != nil {
		cfg.Server.CORSAllowedOrigins = sf.Server.CORSAllowedOrigins
	}
	if sf.Export.OutputDir != "" {
		cfg.Export.OutputDir = sf.Export.OutputDir
	}

	d := sf.Delivery
	if d.Provider != "" {
		cfg.Delivery.Provider = d.Provider
	}
	if d.MailgunDomain != "" {
		cfg.Delivery.MailgunDomain = d.MailgunDomain
	}
	if d.MailgunPrivateAPIKey != "" {
		cfg.Delivery.MailgunPrivateAPIKey = d.MailgunPrivateAPIKey
	}
	if d.SMTPServer != "" {
		cfg.Delivery.SMTPServer = d.SMTPServer
	}
	if d.SMTPPort != 0 {
		cfg.Delivery.SMTPPort = d.SMTPPort
	}
	if d.SMTPUser != "" {
		cfg.Delivery.SMTPUser = d.SMTPUser
	}
	if d.SMTPPassword != "" {
		cfg.Delivery.SMTPPassword = d.SMTPPassword
	}
	if d.SenderEmail != "" {
		cfg.Delivery.SenderEmail = d.SenderEmail
	}
	if d.SenderName != "" {
		cfg.Delivery.SenderName = d.SenderName
	}
	if d.Recipient != "" {
		cfg.Delivery.Recipient = d.Recipient
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.GSheets.SpreadsheetID == "" {
		if strings.HasPrefix(cfg.Source, "settings file") {
			return errs.Newf(errs.KindConfig, "missing spreadsheet_id in %s", cfg.Source)
		}
		return errs.New(errs.KindConfig, "missing spreadsheet_id: set it in settings.toml or via GSPREAD_SHEET_ID")
	}
	id, err := validation.SanitizeSpreadsheetID(cfg.GSheets.SpreadsheetID)
	if err != nil {
		return errs.Wrap(errs.KindConfig, "invalid spreadsheet_id", err)
	}
	cfg.GSheets.SpreadsheetID = id

	ws, err := validation.SanitizeWorksheetName(cfg.GSheets.Worksheet)
	if err != nil {
		return errs.Wrap(errs.KindConfig, "invalid worksheet name", err)
	}
	cfg.GSheets.Worksheet = ws

	if cfg.GSheets.ServiceAccountJSONPath == "" {
		return errs.Newf(errs.KindConfig, "missing service_account_json_path in %s", cfg.Source)
	}

	s := cfg.Schema
	for name, col := range map[string]string{
		"region_column": s.RegionColumn,
		"symbol_column": s.SymbolColumn,
		"name_column":   s.NameColumn,
		"value_column":  s.ValueColumn,
	} {
		if col == "" {
			return errs.Newf(errs.KindConfig, "schema %s must not be empty", name)
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return errs.Newf(errs.KindConfig, "invalid port %d", cfg.Server.Port)
	}
	if cfg.Server.CacheTTL < 0 {
		return errs.New(errs.KindConfig, "cache TTL must not be negative")
	}
	if cfg.Export.OutputDir == "" {
		return errs.New(errs.KindConfig, "output directory must not be empty")
	}

	switch cfg.Delivery.Provider {
	case "mock", "mailgun", "smtp":
	default:
		return errs.Newf(errs.KindConfig, "unknown delivery provider %q", cfg.Delivery.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	logger.L.Warn("Invalid integer value in environment, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	logger.L.Warn("Invalid duration value in environment, using default", "key", key, "value", valueStr, "default", fallback.String())
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
