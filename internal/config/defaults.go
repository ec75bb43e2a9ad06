package config

// Split modes understood by the corpus splitter.
const (
	SplitModeBlock     = "block"
	SplitModeLine      = "line"
	SplitModeDelimiter = "delimiter"
	SplitModeDocument  = "document"
)

// DefaultMaxLinks caps the document links attached to a search response.
const DefaultMaxLinks = 10

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kiji/data/db/kiji.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kiji/data/indices/links"
	}
	if cfg.Corpus.SplitMode == "" {
		cfg.Corpus.SplitMode = SplitModeBlock
	}
	if cfg.Corpus.SplitMode == SplitModeDelimiter && cfg.Corpus.Delimiter == "" {
		cfg.Corpus.Delimiter = "---"
	}
	if cfg.Corpus.Workers == 0 {
		cfg.Corpus.Workers = 4
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.LinkExtensions == nil {
		cfg.Search.LinkExtensions = []string{".pdf"}
	}
	if cfg.Search.MaxLinks == 0 {
		cfg.Search.MaxLinks = DefaultMaxLinks
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 256
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Highlight.Open == "" && cfg.Highlight.Close == "" {
		cfg.Highlight.Open = "**"
		cfg.Highlight.Close = "**"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
