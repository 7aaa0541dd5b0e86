package models

// Kind names a record collection.
type Kind string

const (
	KindMeditation Kind = "meditation"
	KindPrayer     Kind = "prayer"
	KindGratitude  Kind = "gratitude"
	KindDiary      Kind = "diary"
	KindRecord     Kind = "record"
	KindCategory   Kind = "category"
	KindCard       Kind = "card"
)

// CoreKinds are the four kinds that make up the unified feed.
var CoreKinds = []Kind{KindMeditation, KindPrayer, KindGratitude, KindDiary}

var kindLabels = map[Kind]string{
	KindMeditation: "묵상",
	KindPrayer:     "기도",
	KindGratitude:  "감사",
	KindDiary:      "일기",
	KindRecord:     "기록",
	KindCategory:   "카테고리",
	KindCard:       "말씀카드",
}

// Label is the display name used when a record has no title of its own.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func (k Kind) IsCore() bool {
	switch k {
	case KindMeditation, KindPrayer, KindGratitude, KindDiary:
		return true
	}
	return false
}

// ParseKind accepts the collection names used by the API and the CLI.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	if _, ok := kindLabels[k]; ok {
		return k, true
	}
	if s == "records" {
		return KindRecord, true
	}
	if s == "categories" {
		return KindCategory, true
	}
	if s == "cards" {
		return KindCard, true
	}
	return "", false
}
