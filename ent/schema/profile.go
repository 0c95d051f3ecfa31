package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Profile is the learner's single settings row. Its id is always 1.
type Profile struct {
	ent.Schema
}

func (Profile) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "profile"}}
}

func (Profile) Fields() []ent.Field {
	return []ent.Field{
		field.String("level").
			Comment("Difficulty chosen in the vocabulary step"),
		field.Int64("updated_at"),
	}
}

// KnownWord is a word the learner marked as already known, stored lowercased.
type KnownWord struct {
	ent.Schema
}

func (KnownWord) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "known_words"}}
}

func (KnownWord) Fields() []ent.Field {
	return []ent.Field{
		field.String("word").
			Unique().
			NotEmpty(),
		field.Int64("added_at"),
	}
}

// WordStat counts quiz answers per question.
type WordStat struct {
	ent.Schema
}

func (WordStat) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "word_stats"}}
}

func (WordStat) Fields() []ent.Field {
	return []ent.Field{
		field.String("word").
			Unique().
			NotEmpty(),
		field.Int("correct").
			Default(0),
		field.Int("incorrect").
			Default(0),
		field.Int64("last_seen_at"),
	}
}
