package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed instructions.yaml
var instructionsYAML []byte

type Config struct {
	Catalog      CatalogConfig
	Sheets       SheetsConfig
	Images       ImagesConfig
	Validation   ValidationConfig
	Web          WebConfig
	Instructions Instructions
}

type CatalogConfig struct {
	Path string // CSV file with the image pairs
}

type SheetsConfig struct {
	SpreadsheetID   string // Google Sheets document id acting as the annotation ledger
	CredentialsFile string // service account JSON for the Sheets API
	Worksheet       string // tab name (defaults to Sheet1)
}

type ImagesConfig struct {
	Mode     string // "local" (files under BasePath) or "url" (links under BaseURL)
	BasePath string
	BaseURL  string
}

type ValidationConfig struct {
	MinAnnotatorIDLength int // minimum annotator name/id length (default 5)
	MinExplanationLength int // minimum explanation/reflection length (default 20)
}

type WebConfig struct {
	SuperUsers     []string // annotator ids routed to the review browser
	SessionSecret  string   // secret for signing session cookies
	AllowedOrigins []string // CORS whitelist; localhost is always allowed
}

// Instructions is the embedded content of the instructions page.
type Instructions struct {
	Title    string   `yaml:"title"`
	Overview string   `yaml:"overview"`
	Workflow []string `yaml:"workflow"`
	Focus    []string `yaml:"focus"`
	Caution  []string `yaml:"caution"`
	Example  string   `yaml:"example"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envList reads a comma-separated environment variable into a slice,
// trimming whitespace and dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var instructions Instructions
	if err := yaml.Unmarshal(instructionsYAML, &instructions); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded instructions.yaml: " + err.Error())
	}

	return &Config{
		Catalog: CatalogConfig{
			Path: os.Getenv("CATALOG_PATH"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			CredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
			Worksheet:       os.Getenv("SHEETS_WORKSHEET"),
		},
		Images: ImagesConfig{
			Mode:     os.Getenv("IMAGE_MODE"),
			BasePath: os.Getenv("IMAGE_BASE_PATH"),
			BaseURL:  os.Getenv("IMAGE_BASE_URL"),
		},
		Validation: ValidationConfig{
			MinAnnotatorIDLength: envInt("MIN_ANNOTATOR_ID_LENGTH", 5),
			MinExplanationLength: envInt("MIN_EXPLANATION_LENGTH", 20),
		},
		Web: WebConfig{
			SuperUsers:     envList("SUPER_USERS"),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Instructions: instructions,
	}
}

// IsSuperUser reports whether an annotator id is routed to the review
// browser instead of the annotation flow.
func (c *Config) IsSuperUser(annotatorID string) bool {
	for _, id := range c.Web.SuperUsers {
		if id == annotatorID {
			return true
		}
	}
	return false
}
