package domain

import "time"

// PostSource описывает происхождение текста.
type PostSource string

const (
	// SourceJournal — запись из личного дневникового канала.
	SourceJournal PostSource = "journal"
	// SourceGitHub — текст, собранный из активности GitHub.
	SourceGitHub PostSource = "github"
	// SourceManual — черновик, присланный пользователем вручную.
	SourceManual PostSource = "manual"
)

// User описывает пользователя системы.
type User struct {
	ID          int64
	Handle      string
	TGChannelID int64
	DailyLimit  int
	DailyTime   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JournalEntry — сырой текст из одного из источников.
type JournalEntry struct {
	ID        int64
	UserID    int64
	Source    PostSource
	Text      string
	Hash      string
	CreatedAt time.Time
}

// Segment — кандидат на отдельный пост. Живёт только внутри одного прохода
// конвейера и никогда не сохраняется.
type Segment struct {
	Text      string
	WordCount int
}

// SegmentScore — три независимые оценки сегмента и их сумма.
type SegmentScore struct {
	Conviction int
	Novelty    int
	Signal     int
	Total      int
}

// ScoredSegment — сегмент вместе с оценкой.
type ScoredSegment struct {
	Segment Segment
	Score   SegmentScore
}

// Post представляет сгенерированный пост.
type Post struct {
	ID          int64
	UserID      int64
	Text        string
	Fingerprint string
	Source      PostSource
	Posted      bool
	PostedAt    *time.Time
	PublishedID string
	CreatedAt   time.Time
}

// SentenceStat — статистика одного предложения.
type SentenceStat struct {
	Words       []string
	WordCount   int
	Capitalized bool
	Terminal    string
	HasComma    bool
	HasDash     bool
	HasEllipsis bool
}

// PunctuationCounts — сырые счётчики знаков препинания по всему тексту.
type PunctuationCounts struct {
	Commas    int
	Periods   int
	Dashes    int
	Ellipses  int
	Questions int
	Exclaims  int
}

// TextAnalysis — производная статистика текста. Чистая функция от входа,
// без собственного жизненного цикла.
type TextAnalysis struct {
	Sentences         []SentenceStat
	AvgSentenceLength float64
	MinSentenceLength int
	MaxSentenceLength int
	TotalWords        int
	UniqueWords       int
	WordFreq          map[string]int
	StarterFreq       map[string]int
	Punctuation       PunctuationCounts
	UsesEmoji         bool
	UsesHashtags      bool
	UsesAbbreviations bool
	Formality         float64
	TopWords          []string
	CommonStarters    []string
}

// StyleProfile — накопительный профиль стиля пользователя. Единственная
// сущность ядра с настоящим персистентным жизненным циклом.
type StyleProfile struct {
	UserID             int64
	AvgSentenceLength  float64
	MinSentenceLength  int
	MaxSentenceLength  int
	Formality          float64
	UsesEmoji          bool
	UsesHashtags       bool
	UsesAbbreviations  bool
	CommaRatio         float64
	PeriodRatio        float64
	DashRatio          float64
	EllipsisRatio      float64
	CommonWords        []string
	CommonStarters     []string
	ExamplePosts       []string
	TotalPostsAnalyzed int
	UpdatedAt          time.Time
}

// MaxPostLength — жёсткий потолок длины поста в символах.
const MaxPostLength = 280

// ToneRules — неизменяемая конфигурация жёстких правил публикации.
// RequiredDensity и CompressionRatio носят рекомендательный характер и
// принудительно не проверяются.
type ToneRules struct {
	MinSentenceWords int
	MaxSentenceWords int
	MaxSentences     int
	BannedPhrases    []string
	RequiredDensity  float64
	CompressionRatio float64
}

// DefaultToneRules возвращает правила по умолчанию.
func DefaultToneRules() ToneRules {
	return ToneRules{
		MinSentenceWords: 5,
		MaxSentenceWords: 20,
		MaxSentences:     3,
		BannedPhrases: []string{
			"excited to announce",
			"thrilled to share",
			"game changer",
			"рад сообщить",
		},
		RequiredDensity:  0.6,
		CompressionRatio: 0.5,
	}
}
