package analyzer

import (
	"testing"
)

func TestAnalyzeAverageSentenceLength(t *testing.T) {
	analysis := Analyze("One two three four. Five six seven eight.")
	if len(analysis.Sentences) != 2 {
		t.Fatalf("ожидали 2 предложения, получили %d", len(analysis.Sentences))
	}
	if analysis.AvgSentenceLength != 4 {
		t.Fatalf("ожидали среднюю длину 4, получили %f", analysis.AvgSentenceLength)
	}
	if analysis.MinSentenceLength != 4 || analysis.MaxSentenceLength != 4 {
		t.Fatalf("ожидали min=max=4, получили %d и %d", analysis.MinSentenceLength, analysis.MaxSentenceLength)
	}
	if analysis.TotalWords != 8 {
		t.Fatalf("ожидали 8 слов, получили %d", analysis.TotalWords)
	}
}

func TestAnalyzeEmptyTextNoDivideByZero(t *testing.T) {
	analysis := Analyze("")
	if len(analysis.Sentences) != 0 {
		t.Fatalf("ожидали 0 предложений")
	}
	if analysis.AvgSentenceLength != 0 {
		t.Fatalf("ожидали среднюю длину 0, получили %f", analysis.AvgSentenceLength)
	}
}

func TestAnalyzeDetectsEmojiHashtagAbbreviation(t *testing.T) {
	analysis := Analyze("Shipped the new API today 🚀 #golang")
	if !analysis.UsesEmoji {
		t.Fatalf("ожидали признак эмодзи")
	}
	if !analysis.UsesHashtags {
		t.Fatalf("ожидали признак хэштега")
	}
	if !analysis.UsesAbbreviations {
		t.Fatalf("ожидали признак аббревиатуры")
	}
}

func TestFormalityDropsWithEmoji(t *testing.T) {
	plain := Analyze("Great day today and we shipped it.")
	emoji := Analyze("Great day today and we shipped it 😀.")
	if emoji.Formality >= plain.Formality {
		t.Fatalf("эмодзи должны снижать формальность: %f против %f", emoji.Formality, plain.Formality)
	}
	if emoji.Formality < 1 || emoji.Formality > 10 {
		t.Fatalf("формальность вне [1, 10]: %f", emoji.Formality)
	}
}

func TestFormalityGrowsWithLongSentences(t *testing.T) {
	long := Analyze("The committee has considered every proposal that was submitted during the previous quarter and reached a unanimous decision regarding the allocation.")
	if long.Formality <= 5 {
		t.Fatalf("длинные предложения должны повышать формальность: %f", long.Formality)
	}
}

func TestStarterFrequencyKeepsOriginalCase(t *testing.T) {
	analysis := Analyze("Today was productive. Today we shipped. The rest can wait.")
	if analysis.StarterFreq["Today"] != 2 {
		t.Fatalf("ожидали 2 предложения на Today, получили %d", analysis.StarterFreq["Today"])
	}
	if analysis.StarterFreq["today"] != 0 {
		t.Fatalf("стартеры должны сохранять исходный регистр")
	}
}

func TestTopWordsFilterStopWordsAndShortWords(t *testing.T) {
	analysis := Analyze("The system works. The system scales. The system is ok.")
	for _, word := range analysis.TopWords {
		if word == "the" || len(word) <= 2 {
			t.Fatalf("стоп-слово или короткое слово в топе: %q", word)
		}
	}
	if len(analysis.TopWords) == 0 || analysis.TopWords[0] != "system" {
		t.Fatalf("ожидали system на первом месте, получили %v", analysis.TopWords)
	}
}

func TestPunctuationCountsAreRaw(t *testing.T) {
	analysis := Analyze("Wait... really? Yes, really!")
	if analysis.Punctuation.Ellipses != 1 {
		t.Fatalf("ожидали 1 многоточие, получили %d", analysis.Punctuation.Ellipses)
	}
	if analysis.Punctuation.Commas != 1 {
		t.Fatalf("ожидали 1 запятую, получили %d", analysis.Punctuation.Commas)
	}
	if analysis.Punctuation.Questions != 1 || analysis.Punctuation.Exclaims != 1 {
		t.Fatalf("неверные счётчики: %+v", analysis.Punctuation)
	}
}
