package tables

import "github.com/dailygrace/dailygrace/internal/client/models"

// CardRow is a verse card as the hosted table keeps it: the image bytes
// live in object storage and the row only names them.
type CardRow struct {
	models.VerseCard
	ImageKey  string
	ImageMime string
}

var Cards = Mapping[CardRow]{
	Name:    "verse_cards",
	Columns: []string{"ratio", "bg", "text", "ref", "tags", "editor_state", "image_key", "image_mime"},
	Values: func(v *CardRow) ([]any, error) {
		tags, err := jsonText(nonNil(v.Tags))
		if err != nil {
			return nil, err
		}
		return []any{string(v.Ratio), v.Bg, v.Text, v.Ref, tags, jsonOrNull(v.EditorState), v.ImageKey, v.ImageMime}, nil
	},
	Dest: func(v *CardRow) []any {
		return []any{&v.Ratio, &v.Bg, &v.Text, &v.Ref, jsonInto(&v.Tags), jsonInto(&v.EditorState), &v.ImageKey, &v.ImageMime}
	},
}
