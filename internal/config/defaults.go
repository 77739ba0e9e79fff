package config

const (
	defaultDataDir            = "~/.local/share/civicintel/meetings_data"
	defaultLogDir             = "~/.local/share/civicintel/logs"
	defaultLogFormat          = ""
	defaultLogLevel           = "info"
	defaultDeepgramBaseURL    = "https://api.deepgram.com/v1/listen"
	defaultDeepgramModel      = "nova-2"
	defaultDeepgramLanguage   = "en-US"
	defaultDeepgramTimeout    = 600
	defaultAnthropicBaseURL   = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel     = "claude-sonnet-4-20250514"
	defaultAnthropicTokens    = 8192
	defaultTranscriptChars    = 50000
	defaultAnthropicTimeout   = 120
	defaultLegistarBaseURL    = "https://webapi.legistar.com/v1"
	defaultLegistarPageSize   = 100
	defaultLegistarRateDelay  = 0.5
	defaultLegistarLookback   = 90
	defaultLegistarTimeout    = 30
	defaultAudioFormat        = "mp3"
	defaultAudioQuality       = "128k"
	defaultRateLimitSeconds   = 5
	defaultMaxMeetingsPerRun  = 20
	defaultMaxItemsPerSource  = 50
	defaultMaxConcurrency     = 2
)

// DefaultJurisdictions returns the built-in Colorado jurisdiction table.
// A config file [[jurisdiction]] block replaces this list entirely.
func DefaultJurisdictions() []Jurisdiction {
	return []Jurisdiction{
		{
			Name:           "Denver",
			ChannelURL:     "https://www.youtube.com/@Denver8TV/videos",
			PortalSite:     "denver.granicus.com",
			LegistarClient: "denver",
			MeetingBodies: []string{
				"City Council",
				"Planning Board",
				"Land Use, Transportation & Infrastructure Committee",
			},
		},
		{
			Name:       "Aurora",
			ChannelURL: "https://www.youtube.com/@theaurorachannel/videos",
			PortalSite: "aurora.granicus.com",
			MeetingBodies: []string{
				"City Council",
				"Planning Commission",
				"Housing and Managed Care Committee",
			},
		},
		{
			Name:       "Lakewood",
			ChannelURL: "https://www.youtube.com/@LakewoodCOgov/videos",
			PortalSite: "lakewood.granicus.com",
			MeetingBodies: []string{
				"City Council",
				"Planning Commission",
			},
		},
		{
			Name:       "Boulder",
			ChannelURL: "https://www.youtube.com/@CityofBoulderGov",
			PortalSite: "boulder.granicus.com",
			MeetingBodies: []string{
				"City Council",
				"Planning Board",
				"Housing Advisory Board",
			},
		},
	}
}

// DefaultMeetingTitleKeywords returns the precision filter vocabulary for
// channel listings, which mix meetings with unrelated city programming.
func DefaultMeetingTitleKeywords() []string {
	return []string{
		"city council",
		"council meeting",
		"planning commission",
		"planning board",
		"public hearing",
		"land use",
		"zoning",
		"housing committee",
		"housing authority",
		"study session",
		"work session",
		"committee of the whole",
		"budget hearing",
	}
}

// DefaultHousingKeywords returns the housing relevance vocabulary shared by
// agenda scoring and transcript mention counting.
func DefaultHousingKeywords() []string {
	return []string{
		// Zoning & land use
		"inclusionary zoning",
		"density bonus",
		"rezoning",
		"upzoning",
		"mixed-use",
		"accessory dwelling unit",
		"ADU",
		"transit-oriented development",
		"TOD",
		"single-family zoning",
		"missing middle",
		// Programs & funding
		"housing trust fund",
		"LIHTC",
		"low-income housing tax credit",
		"Section 8",
		"housing choice voucher",
		"CDBG",
		"community development block grant",
		"HOME funds",
		"tax increment financing",
		"TIF",
		"opportunity zone",
		// Affordability metrics
		"area median income",
		"AMI",
		"affordable housing",
		"workforce housing",
		"attainable housing",
		"below market rate",
		"rent stabilization",
		"rent control",
		"just cause eviction",
		// Development
		"housing development",
		"apartment",
		"multifamily",
		"condominium",
		"townhome",
		"subdivision",
		"building permit",
		"site plan",
		// Organizations & entities
		"housing authority",
		"Colorado Housing and Finance Authority",
		"CHFA",
		"HUD",
		"Habitat for Humanity",
		// Homelessness
		"homelessness",
		"unhoused",
		"shelter",
		"supportive housing",
		"permanent supportive housing",
		"navigation center",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Jurisdictions: DefaultJurisdictions(),
		Keywords: Keywords{
			MeetingTitles: DefaultMeetingTitleKeywords(),
			Housing:       DefaultHousingKeywords(),
		},
		Deepgram: Deepgram{
			BaseURL:        defaultDeepgramBaseURL,
			Model:          defaultDeepgramModel,
			Language:       defaultDeepgramLanguage,
			TimeoutSeconds: defaultDeepgramTimeout,
		},
		Anthropic: Anthropic{
			BaseURL:            defaultAnthropicBaseURL,
			Model:              defaultAnthropicModel,
			MaxTokens:          defaultAnthropicTokens,
			MaxTranscriptChars: defaultTranscriptChars,
			TimeoutSeconds:     defaultAnthropicTimeout,
		},
		Legistar: Legistar{
			BaseURL:        defaultLegistarBaseURL,
			PageSize:       defaultLegistarPageSize,
			RateDelay:      defaultLegistarRateDelay,
			LookbackDays:   defaultLegistarLookback,
			RequestTimeout: defaultLegistarTimeout,
		},
		Processing: Processing{
			AudioFormat:      defaultAudioFormat,
			AudioQuality:     defaultAudioQuality,
			RateLimitSeconds: defaultRateLimitSeconds,
			MaxPerRun:        defaultMaxMeetingsPerRun,
			MaxPerSource:     defaultMaxItemsPerSource,
			MaxConcurrency:   defaultMaxConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
