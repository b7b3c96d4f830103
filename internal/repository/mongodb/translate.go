package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// Reference fields are stored as ObjectIDs; predicate values on them arrive as
// opaque hex strings and must be converted before they hit the server.
var idFields = map[string]bool{
	domain.FieldID:         true,
	domain.FieldProject:    true,
	domain.FieldAssignedTo: true,
	domain.FieldMembers:    true,
	domain.FieldTasks:      true,
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}

func predicateValue(field string, v any) (any, error) {
	s, ok := v.(string)
	if !ok || !idFields[field] {
		return v, nil
	}
	return objectID(s)
}

func queryFilter(q repository.Query) bson.M {
	if q.Contains == "" {
		return bson.M{}
	}
	return bson.M{q.Field: bson.M{"$regex": q.Contains, "$options": "i"}}
}

// translate compiles a typed pipeline into the driver's representation.
func translate(p pipeline.Pipeline) (mongo.Pipeline, error) {
	out := make(mongo.Pipeline, 0, len(p))
	for _, st := range p {
		switch st := st.(type) {
		case pipeline.Match:
			match, err := translateMatch(st)
			if err != nil {
				return nil, err
			}
			out = append(out, bson.D{{Key: "$match", Value: match}})
		case pipeline.Group:
			out = append(out, bson.D{{Key: "$group", Value: bson.M{
				"_id":      "$" + st.By,
				st.CountAs: bson.M{"$sum": 1},
			}}})
		case pipeline.Lookup:
			out = append(out, bson.D{{Key: "$lookup", Value: bson.M{
				"from":         string(st.From),
				"localField":   st.LocalField,
				"foreignField": st.ForeignField,
				"as":           st.As,
			}}})
		case pipeline.Unwind:
			out = append(out, bson.D{{Key: "$unwind", Value: "$" + st.Path}})
		case pipeline.Project:
			fields := bson.M{"_id": 0}
			for _, f := range st.Fields {
				if f.Size {
					fields[f.As] = bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + f.Source(), bson.A{}}}}
				} else {
					fields[f.As] = "$" + f.Source()
				}
			}
			out = append(out, bson.D{{Key: "$project", Value: fields}})
		case pipeline.Sort:
			out = append(out, bson.D{{Key: "$sort", Value: bson.D{{Key: st.By, Value: 1}}}})
		default:
			return nil, fmt.Errorf("mongodb: unsupported pipeline stage %T", st)
		}
	}
	return out, nil
}

func translateMatch(m pipeline.Match) (bson.M, error) {
	match := bson.M{}
	for _, p := range m.Predicates {
		switch p := p.(type) {
		case pipeline.Eq:
			v, err := predicateValue(p.Field, p.Value)
			if err != nil {
				return nil, err
			}
			match[p.Field] = v
		case pipeline.Ne:
			v, err := predicateValue(p.Field, p.Value)
			if err != nil {
				return nil, err
			}
			match[p.Field] = merged(match[p.Field], "$ne", v)
		case pipeline.Lt:
			v, err := predicateValue(p.Field, p.Value)
			if err != nil {
				return nil, err
			}
			match[p.Field] = merged(match[p.Field], "$lt", v)
		default:
			return nil, fmt.Errorf("mongodb: unsupported predicate %T", p)
		}
	}
	return match, nil
}

// merged folds an operator into any existing operator document on the field.
func merged(existing any, op string, v any) bson.M {
	doc, ok := existing.(bson.M)
	if !ok {
		doc = bson.M{}
	}
	doc[op] = v
	return doc
}

// normalize converts driver output into the backend-neutral row shape:
// ObjectIDs become hex strings, BSON datetimes become time.Time, and nested
// arrays and documents are converted recursively.
func normalize(v any) any {
	switch v := v.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case bson.M:
		out := make(pipeline.Doc, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(pipeline.Doc, len(v))
		for _, e := range v {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case int32:
		return int64(v)
	case time.Time:
		return v.UTC()
	}
	return v
}

func normalizeRows(rows []bson.M) []pipeline.Doc {
	out := make([]pipeline.Doc, len(rows))
	for i, r := range rows {
		out[i] = normalize(r).(pipeline.Doc)
	}
	return out
}
