package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"stockpulse/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram    TelegramConfig               `yaml:"telegram"`
	Schedule    ScheduleConfig               `yaml:"schedule"`
	Market      MarketConfig                 `yaml:"market"`
	Watchlist   []string                     `yaml:"watchlist"`
	Indices     []IndexConfig                `yaml:"indices"`
	Indicators  IndicatorConfig              `yaml:"indicators"`
	Pattern     PatternConfig                `yaml:"pattern"`
	TradeLevels map[string]TradeLevelsConfig `yaml:"trade_levels"`
	News        NewsConfig                   `yaml:"news"`
	Database    DatabaseConfig               `yaml:"database"`
	Health      HealthConfig                 `yaml:"health"`
}

// TelegramConfig identifies the bot and the chat that receives reports.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// ScheduleConfig controls the daily report trigger.
type ScheduleConfig struct {
	// DailyCron is a 6-field cron expression with seconds; a CRON_TZ prefix
	// pins it to a timezone.
	DailyCron string `yaml:"daily_cron"`
	// SchedulerOnly disables command polling so a second instance can own
	// the chat commands.
	SchedulerOnly bool `yaml:"scheduler_only"`
}

// MarketConfig selects and tunes the price data source.
type MarketConfig struct {
	Provider       string `yaml:"provider"` // nse, yahoo or mock
	BaseURL        string `yaml:"base_url"`
	LookbackDays   int    `yaml:"lookback_days"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// IndexConfig names one market index shown in the report header.
type IndexConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// IndicatorConfig holds every indicator window and threshold.
type IndicatorConfig struct {
	RSIPeriod        int     `yaml:"rsi_period"`
	EMAShort         int     `yaml:"ema_short"`
	EMALong          int     `yaml:"ema_long"`
	MACDFast         int     `yaml:"macd_fast"`
	MACDSlow         int     `yaml:"macd_slow"`
	MACDSignal       int     `yaml:"macd_signal"`
	VolumeWindow     int     `yaml:"volume_window"`
	VolumeSpikeRatio float64 `yaml:"volume_spike_ratio"`
	RSIOversold      float64 `yaml:"rsi_oversold"`
	RSIBullish       float64 `yaml:"rsi_bullish"`
	RSIOverbought    float64 `yaml:"rsi_overbought"`
}

// MinBars returns the minimum series length required to compute every
// indicator, i.e. the longest lookback window.
func (c IndicatorConfig) MinBars() int {
	min := c.EMALong
	if n := c.MACDSlow + c.MACDSignal; n > min {
		min = n
	}
	if n := c.RSIPeriod + 1; n > min {
		min = n
	}
	if n := c.VolumeWindow + 1; n > min {
		min = n
	}
	return min
}

// PatternConfig tunes the chart-pattern heuristic.
type PatternConfig struct {
	Window       int     `yaml:"window"`
	PivotSpan    int     `yaml:"pivot_span"`
	TolerancePct float64 `yaml:"tolerance_pct"`
	BreakoutPct  float64 `yaml:"breakout_pct"`
}

// TradeLevelsConfig is one analyst entry in the static trade-levels table.
// Bands are given as [low, high] or as a single value.
type TradeLevelsConfig struct {
	Entry      []float64 `yaml:"entry"`
	StopLoss   float64   `yaml:"stop_loss"`
	STTarget   []float64 `yaml:"st_target"`
	MTTarget   []float64 `yaml:"mt_target"`
	RiskReward string    `yaml:"risk_reward"`
}

// NewsConfig tunes the headline fetcher.
type NewsConfig struct {
	Disabled       bool                `yaml:"disabled"`
	FeedURL        string              `yaml:"feed_url"` // template, %s is the query
	MaxPerTicker   int                 `yaml:"max_per_ticker"`
	ScanLimit      int                 `yaml:"scan_limit"`
	MaxAgeDays     int                 `yaml:"max_age_days"`
	TimeoutSeconds int                 `yaml:"timeout_seconds"`
	Aliases        map[string][]string `yaml:"aliases"`
}

// DatabaseConfig locates the signal audit database. An empty path disables
// recording.
type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// HealthConfig locates the persisted health state.
type HealthConfig struct {
	StateFile string `yaml:"state_file"`
}

// Default returns the built-in configuration. Load overlays the YAML file
// and environment on top of it.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DailyCron: "CRON_TZ=Asia/Kolkata 0 0 9 * * *",
		},
		Market: MarketConfig{
			Provider:       "nse",
			BaseURL:        "https://www.nseindia.com",
			LookbackDays:   120,
			TimeoutSeconds: 15,
		},
		Watchlist: []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK"},
		Indices: []IndexConfig{
			{Name: "NIFTY 50", Symbol: "^NSEI"},
			{Name: "NIFTY MIDCAP 150", Symbol: "NIFTY_MID_SELECT.NS"},
			{Name: "NIFTY SMALLCAP 250", Symbol: "^CNXSC"},
			{Name: "NIFTY BANK", Symbol: "^NSEBANK"},
		},
		Indicators: IndicatorConfig{
			RSIPeriod:        14,
			EMAShort:         20,
			EMALong:          50,
			MACDFast:         12,
			MACDSlow:         26,
			MACDSignal:       9,
			VolumeWindow:     20,
			VolumeSpikeRatio: 1.5,
			RSIOversold:      40,
			RSIBullish:       50,
			RSIOverbought:    70,
		},
		Pattern: PatternConfig{
			Window:       40,
			PivotSpan:    3,
			TolerancePct: 2.0,
			BreakoutPct:  1.0,
		},
		TradeLevels: map[string]TradeLevelsConfig{
			"RELIANCE":   {Entry: []float64{2840, 2920}, StopLoss: 2700, STTarget: []float64{3050, 3120}, MTTarget: []float64{3300, 3450}, RiskReward: "1:2.5"},
			"TCS":        {Entry: []float64{4050, 4150}, StopLoss: 3880, STTarget: []float64{4350, 4450}, MTTarget: []float64{4700, 4900}, RiskReward: "1:2.3"},
			"HDFCBANK":   {Entry: []float64{1620, 1665}, StopLoss: 1540, STTarget: []float64{1760, 1800}, MTTarget: []float64{1900, 1980}, RiskReward: "1:2.4"},
			"INFY":       {Entry: []float64{1820, 1870}, StopLoss: 1740, STTarget: []float64{1980, 2020}, MTTarget: []float64{2150, 2250}, RiskReward: "1:2.2"},
			"ICICIBANK":  {Entry: []float64{1225, 1260}, StopLoss: 1170, STTarget: []float64{1340, 1370}, MTTarget: []float64{1450, 1520}, RiskReward: "1:2.6"},
			"NATCOPHARM": {Entry: []float64{845, 880}, StopLoss: 720, STTarget: []float64{940, 960}, MTTarget: []float64{1060, 1150}, RiskReward: "1:2.5"},
			"WELSPUNLIV": {Entry: []float64{132, 140}, StopLoss: 118, STTarget: []float64{155, 160}, MTTarget: []float64{175, 185}, RiskReward: "1:2.5"},
			"MCX":        {Entry: []float64{8400, 8700}, StopLoss: 7900, STTarget: []float64{9200, 9500}, MTTarget: []float64{10200, 10800}, RiskReward: "1:2.5"},
			"AUBANK":     {Entry: []float64{990, 1020}, StopLoss: 960, STTarget: []float64{1060, 1090}, MTTarget: []float64{1180, 1250}, RiskReward: "1:2.5"},
			"GRAPHITE":   {Entry: []float64{430, 480}, StopLoss: 390, STTarget: []float64{550, 590}, MTTarget: []float64{670, 720}, RiskReward: "1:2.8"},
		},
		News: NewsConfig{
			FeedURL:        "https://news.google.com/rss/search?q=%s+NSE+India+stock&hl=en-IN&gl=IN&ceid=IN:en",
			MaxPerTicker:   2,
			ScanLimit:      15,
			MaxAgeDays:     2,
			TimeoutSeconds: 10,
			Aliases: map[string][]string{
				"RELIANCE":  {"Reliance Industries"},
				"HDFCBANK":  {"HDFC Bank"},
				"ICICIBANK": {"ICICI Bank"},
				"INFY":      {"Infosys"},
			},
		},
		Database: DatabaseConfig{
			SQLitePath: "data/stockpulse.db",
		},
		Health: HealthConfig{
			StateFile: "data/health.json",
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("BOT_SCHEDULER_ONLY"); v != "" {
		cfg.Schedule.SchedulerOnly = parseBool(v)
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("NSE_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HEALTH_FILE"); v != "" {
		cfg.Health.StateFile = v
	}

	// Tickers are NSE symbols, always uppercase.
	for i, t := range cfg.Watchlist {
		cfg.Watchlist[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	levels := make(map[string]TradeLevelsConfig, len(cfg.TradeLevels))
	for ticker, lvl := range cfg.TradeLevels {
		levels[strings.ToUpper(strings.TrimSpace(ticker))] = lvl
	}
	cfg.TradeLevels = levels

	return cfg, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Validate checks that all required fields are set and consistent. Any
// error here is fatal at startup.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.Market.Provider {
	case "nse", "yahoo", "mock":
	default:
		return fmt.Errorf("market.provider must be nse, yahoo or mock, got %q", c.Market.Provider)
	}
	if c.Market.BaseURL == "" && c.Market.Provider == "nse" {
		return fmt.Errorf("market.base_url is required for the nse provider")
	}
	if c.Market.LookbackDays <= 0 {
		return fmt.Errorf("market.lookback_days must be positive")
	}
	if c.Market.TimeoutSeconds <= 0 {
		return fmt.Errorf("market.timeout_seconds must be positive")
	}

	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	seen := make(map[string]bool, len(c.Watchlist))
	for _, ticker := range c.Watchlist {
		if ticker == "" {
			return fmt.Errorf("watchlist contains an empty ticker")
		}
		if seen[ticker] {
			return fmt.Errorf("watchlist ticker %s is duplicated", ticker)
		}
		seen[ticker] = true
	}

	for _, idx := range c.Indices {
		if idx.Name == "" || idx.Symbol == "" {
			return fmt.Errorf("indices entries need both name and symbol")
		}
	}

	if err := c.Indicators.validate(); err != nil {
		return err
	}
	if err := c.Pattern.validate(); err != nil {
		return err
	}

	// Every tracked ticker must have a trade-levels entry.
	for _, ticker := range c.Watchlist {
		lvl, ok := c.TradeLevels[ticker]
		if !ok {
			return fmt.Errorf("trade_levels missing entry for tracked ticker %s", ticker)
		}
		if err := lvl.validate(ticker); err != nil {
			return err
		}
	}

	if !c.News.Disabled {
		if !strings.Contains(c.News.FeedURL, "%s") {
			return fmt.Errorf("news.feed_url must contain a %%s query placeholder")
		}
		if c.News.MaxPerTicker <= 0 {
			return fmt.Errorf("news.max_per_ticker must be positive")
		}
		if c.News.ScanLimit < c.News.MaxPerTicker {
			return fmt.Errorf("news.scan_limit must be at least news.max_per_ticker")
		}
		if c.News.TimeoutSeconds <= 0 {
			return fmt.Errorf("news.timeout_seconds must be positive")
		}
	}

	if c.Health.StateFile == "" {
		return fmt.Errorf("health.state_file is required")
	}
	return nil
}

func (c IndicatorConfig) validate() error {
	for name, period := range map[string]int{
		"indicators.rsi_period":    c.RSIPeriod,
		"indicators.ema_short":     c.EMAShort,
		"indicators.ema_long":      c.EMALong,
		"indicators.macd_fast":     c.MACDFast,
		"indicators.macd_slow":     c.MACDSlow,
		"indicators.macd_signal":   c.MACDSignal,
		"indicators.volume_window": c.VolumeWindow,
	} {
		if period <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be shorter than macd_slow")
	}
	if c.EMAShort >= c.EMALong {
		return fmt.Errorf("indicators.ema_short must be shorter than ema_long")
	}
	if c.VolumeSpikeRatio <= 0 {
		return fmt.Errorf("indicators.volume_spike_ratio must be positive")
	}
	if !(c.RSIOversold < c.RSIBullish && c.RSIBullish < c.RSIOverbought) {
		return fmt.Errorf("indicators RSI zones must satisfy oversold < bullish < overbought")
	}
	if c.RSIOversold < 0 || c.RSIOverbought > 100 {
		return fmt.Errorf("indicators RSI zones must lie within [0, 100]")
	}
	return nil
}

func (c PatternConfig) validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("pattern.window must be positive")
	}
	if c.PivotSpan <= 0 {
		return fmt.Errorf("pattern.pivot_span must be positive")
	}
	if c.Window < 2*c.PivotSpan+2 {
		return fmt.Errorf("pattern.window is too small for pivot_span %d", c.PivotSpan)
	}
	if c.TolerancePct < 0 || c.BreakoutPct < 0 {
		return fmt.Errorf("pattern tolerances must not be negative")
	}
	return nil
}

func (t TradeLevelsConfig) validate(ticker string) error {
	for name, band := range map[string][]float64{
		"entry":     t.Entry,
		"st_target": t.STTarget,
		"mt_target": t.MTTarget,
	} {
		if len(band) < 1 || len(band) > 2 {
			return fmt.Errorf("trade_levels.%s.%s must have one or two values", ticker, name)
		}
		for _, v := range band {
			if v <= 0 {
				return fmt.Errorf("trade_levels.%s.%s must be positive", ticker, name)
			}
		}
		if len(band) == 2 && band[0] > band[1] {
			return fmt.Errorf("trade_levels.%s.%s low must not exceed high", ticker, name)
		}
	}
	if t.StopLoss <= 0 {
		return fmt.Errorf("trade_levels.%s.stop_loss must be positive", ticker)
	}
	return nil
}

// LevelsTable converts every configured trade-levels entry into its model
// form, keyed by ticker. Call after Validate.
func (c *Config) LevelsTable() map[string]model.TradeLevels {
	table := make(map[string]model.TradeLevels, len(c.TradeLevels))
	for ticker, lvl := range c.TradeLevels {
		table[ticker] = model.TradeLevels{
			Entry:      toBand(lvl.Entry),
			StopLoss:   lvl.StopLoss,
			STTarget:   toBand(lvl.STTarget),
			MTTarget:   toBand(lvl.MTTarget),
			RiskReward: lvl.RiskReward,
		}
	}
	return table
}

func toBand(values []float64) model.PriceBand {
	switch len(values) {
	case 1:
		return model.PriceBand{Low: values[0], High: values[0]}
	case 2:
		return model.PriceBand{Low: values[0], High: values[1]}
	default:
		return model.PriceBand{}
	}
}
