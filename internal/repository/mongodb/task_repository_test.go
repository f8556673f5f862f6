package mongodb

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"task-tracker/internal/domain"
)

func TestListFilterVisibilityOnly(t *testing.T) {
	filter := listFilter(domain.TaskQuery{UserID: "u1"})

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("$or = %#v, want owner/assignee pair", filter["$or"])
	}
	if or[0].(bson.M)["createdBy"] != "u1" || or[1].(bson.M)["assignedTo"] != "u1" {
		t.Fatalf("unexpected visibility clause %#v", or)
	}
	if _, ok := filter["status"]; ok {
		t.Fatal("status should be absent when not requested")
	}
	if _, ok := filter["$and"]; ok {
		t.Fatal("$and should be absent without search")
	}
}

func TestListFilterStatusAndSearch(t *testing.T) {
	filter := listFilter(domain.TaskQuery{UserID: "u1", Status: "archived", Search: "a.b*"})

	if filter["status"] != "archived" {
		t.Fatalf("status = %v, want verbatim pass-through", filter["status"])
	}
	and, ok := filter["$and"].(bson.A)
	if !ok || len(and) != 1 {
		t.Fatalf("$and = %#v, want one search clause", filter["$and"])
	}
	clauses := and[0].(bson.M)["$or"].(bson.A)
	title := clauses[0].(bson.M)["title"].(bson.M)
	if title["$regex"] != `a\.b\*` {
		t.Fatalf("regex = %v, want escaped literal", title["$regex"])
	}
	if title["$options"] != "i" {
		t.Fatalf("options = %v, want case-insensitive", title["$options"])
	}
}

func TestListOptionsNewestFirst(t *testing.T) {
	opts := listOptions(domain.TaskQuery{Offset: math.MaxInt, Limit: 5})

	want := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	if !reflect.DeepEqual(opts.Sort, want) {
		t.Fatalf("sort = %#v, want %#v", opts.Sort, want)
	}
	if opts.Skip == nil || *opts.Skip != math.MaxInt64 {
		t.Fatalf("skip = %v, want saturated offset", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 5 {
		t.Fatalf("limit = %v, want 5", opts.Limit)
	}
}

func TestNewIDSortsInCreationOrder(t *testing.T) {
	prev, err := newID()
	if err != nil {
		t.Fatalf("newID: %v", err)
	}
	// Far more ids than fit in distinct milliseconds.
	for i := 0; i < 2000; i++ {
		id, err := newID()
		if err != nil {
			t.Fatalf("newID: %v", err)
		}
		if id <= prev {
			t.Fatalf("id %d = %s, not after %s", i, id, prev)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("parse %s: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("version = %d, want 7", parsed.Version())
		}
		prev = id
	}
}
