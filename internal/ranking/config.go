package ranking

// Default scoring weights. Each rule adds to a passage's running score.
const (
	// DefaultPhraseWeight is added per matching token n-gram, multiplied by the n-gram size.
	DefaultPhraseWeight = 20
	// DefaultLiteralWeight is added per case-insensitive occurrence of the raw query.
	DefaultLiteralWeight = 40
	// DefaultLooseWeight is added per occurrence of the loose-normalized query.
	DefaultLooseWeight = 20
	// DefaultEarlyBoost is added once when the raw query appears in the passage summary.
	DefaultEarlyBoost = 10
	// DefaultSummaryLines is the number of leading lines that form the passage summary.
	DefaultSummaryLines = 3
)

// RankingConfig holds the scoring weights of the ranking policy.
type RankingConfig struct {
	PhraseWeight  int `yaml:"phrase_weight"`  // default: 20
	LiteralWeight int `yaml:"literal_weight"` // default: 40
	LooseWeight   int `yaml:"loose_weight"`   // default: 20
	EarlyBoost    int `yaml:"early_boost"`    // default: 10
	SummaryLines  int `yaml:"summary_lines"`  // default: 3
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		PhraseWeight:  DefaultPhraseWeight,
		LiteralWeight: DefaultLiteralWeight,
		LooseWeight:   DefaultLooseWeight,
		EarlyBoost:    DefaultEarlyBoost,
		SummaryLines:  DefaultSummaryLines,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	if c.PhraseWeight == 0 {
		c.PhraseWeight = DefaultPhraseWeight
	}
	if c.LiteralWeight == 0 {
		c.LiteralWeight = DefaultLiteralWeight
	}
	if c.LooseWeight == 0 {
		c.LooseWeight = DefaultLooseWeight
	}
	if c.EarlyBoost == 0 {
		c.EarlyBoost = DefaultEarlyBoost
	}
	if c.SummaryLines <= 0 {
		c.SummaryLines = DefaultSummaryLines
	}
}
