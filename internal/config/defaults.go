package config

const (
	defaultDataDir       = "~/.local/share/lbstats"
	defaultTMDBBaseURL   = "https://api.themoviedb.org/3"
	defaultTMDBLanguage  = "en-US"
	defaultPosterColumns = 180
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		CLI: CLI{
			PosterColumns: defaultPosterColumns,
		},
	}
}
