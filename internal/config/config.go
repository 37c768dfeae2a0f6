package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sheetStamp/internal/excel"
	"sheetStamp/internal/gsheet"
	"sheetStamp/internal/logger"
	"sheetStamp/internal/stamp"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g.
// SHEETSTAMP_STAMP_TABLE_NAME.
const EnvPrefix = "SHEETSTAMP"

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = "configs/config.toml"

type Config struct {
	Stamp    StampConfig    `toml:"stamp" envconfig:"STAMP"`
	Scan     ScanConfig     `toml:"scan" envconfig:"SCAN"`
	Workbook WorkbookConfig `toml:"workbook" envconfig:"WORKBOOK"`
	Sheets   SheetsConfig   `toml:"sheets" envconfig:"SHEETS"`
	Log      LogConfig      `toml:"log" envconfig:"LOG"`
	UI       UIConfig       `toml:"ui" envconfig:"UI"`
}

type StampConfig struct {
	LabelPrefix string `toml:"label_prefix" split_words:"true" validate:"required"`
	Locale      string `toml:"locale" split_words:"true" validate:"required"`
	Timezone    string `toml:"timezone" split_words:"true" validate:"omitempty,timezone"`
	TableName   string `toml:"table_name" split_words:"true" validate:"required,max=255,tablename"`
	TableStyle  string `toml:"table_style" split_words:"true"`
}

type ScanConfig struct {
	InputDirectory  string `toml:"input_directory" split_words:"true" validate:"required"`
	OutputDirectory string `toml:"output_directory" split_words:"true" validate:"required"`
}

type WorkbookConfig struct {
	Sheet string `toml:"sheet" split_words:"true"`
}

type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id" split_words:"true"`
	Sheet           string `toml:"sheet" split_words:"true"`
	CredentialsFile string `toml:"credentials_file" split_words:"true"`
	APIKey          string `toml:"api_key" split_words:"true"`
	Endpoint        string `toml:"endpoint" split_words:"true" validate:"omitempty,url"`
}

type LogConfig struct {
	Directory string `toml:"directory" split_words:"true" validate:"required"`
	Level     string `toml:"level" split_words:"true" validate:"omitempty,oneof=debug info warn error"`
}

type UIConfig struct {
	PageSize int `toml:"page_size" split_words:"true" validate:"min=1,max=100"`
}

// tableNamePattern matches names the workbook formats accept for tables.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_\\][A-Za-z0-9_.]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
		return tableNamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("config: registering tablename validation: %v", err))
	}
	return v
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		Stamp: StampConfig{
			LabelPrefix: stamp.DefaultLabelPrefix,
			Locale:      stamp.DefaultLocale,
			TableName:   stamp.DefaultTableName,
			TableStyle:  excel.DefaultTableStyle,
		},
		Scan: ScanConfig{
			InputDirectory:  "data/input",
			OutputDirectory: "data/output",
		},
		Log: LogConfig{
			Directory: "logs",
			Level:     "info",
		},
		UI: UIConfig{
			PageSize: 15,
		},
	}
}

// LoadConfig loads configuration from the specified config file path,
// creating it with defaults when missing. Environment variables prefixed
// with SHEETSTAMP override file values.
func LoadConfig(configPath string) (*Config, error) {
	var config *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = Default()
		if err := SaveConfig(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		logger.Info("Created default config file", "path", configPath)
	} else {
		config = &Config{}
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		config.applyDefaults()
		logger.Info("Loaded configuration", "path", configPath)
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyDefaults fills settings left out of an existing file
func (c *Config) applyDefaults() {
	d := Default()
	if c.Stamp.LabelPrefix == "" {
		c.Stamp.LabelPrefix = d.Stamp.LabelPrefix
	}
	if c.Stamp.Locale == "" {
		c.Stamp.Locale = d.Stamp.Locale
	}
	if c.Stamp.TableName == "" {
		c.Stamp.TableName = d.Stamp.TableName
	}
	if c.Stamp.TableStyle == "" {
		c.Stamp.TableStyle = d.Stamp.TableStyle
	}
	if c.Scan.InputDirectory == "" {
		c.Scan.InputDirectory = d.Scan.InputDirectory
	}
	if c.Scan.OutputDirectory == "" {
		c.Scan.OutputDirectory = d.Scan.OutputDirectory
	}
	if c.Log.Directory == "" {
		c.Log.Directory = d.Log.Directory
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.UI.PageSize == 0 {
		c.UI.PageSize = d.UI.PageSize
	}
}

// Validate checks field constraints and that the locale resolves to a
// date layout.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.LabelFormatter(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LabelFormatter builds the date label formatter from [stamp]
func (c *Config) LabelFormatter() (*stamp.LabelFormatter, error) {
	return stamp.NewLabelFormatter(c.Stamp.LabelPrefix, c.Stamp.Locale, c.Stamp.Timezone)
}

// FileOptions builds the per-workbook options from [stamp] and [workbook]
func (c *Config) FileOptions() (excel.FileOptions, error) {
	formatter, err := c.LabelFormatter()
	if err != nil {
		return excel.FileOptions{}, err
	}
	return excel.FileOptions{
		Sheet:      c.Workbook.Sheet,
		TableStyle: c.Stamp.TableStyle,
		Stamp: stamp.Options{
			Formatter: formatter,
			TableName: c.Stamp.TableName,
		},
	}, nil
}

// GoogleSheets returns the [sheets] section as a client config
func (c *Config) GoogleSheets() gsheet.Config {
	return gsheet.Config{
		SpreadsheetID:   c.Sheets.SpreadsheetID,
		Sheet:           c.Sheets.Sheet,
		CredentialsFile: c.Sheets.CredentialsFile,
		APIKey:          c.Sheets.APIKey,
		Endpoint:        c.Sheets.Endpoint,
	}
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
