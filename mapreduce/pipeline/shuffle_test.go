package pipeline

import (
	"math/rand"
	"testing"

	"wordcount/mapreduce/types"
)

func ones(words ...string) []types.Record {
	records := make([]types.Record, 0, len(words))
	for _, w := range words {
		records = append(records, types.Record{Word: w, Count: 1})
	}
	return records
}

func TestShuffleGroups(t *testing.T) {
	grouped := Shuffle(ones("world", "hello", "hello", "world", "a"))
	want := []types.Record{{Word: "a", Count: 1}, {Word: "hello", Count: 2}, {Word: "world", Count: 2}}
	if len(grouped) != len(want) {
		t.Fatalf("Shuffle gave %v; expected %v", grouped, want)
	}
	for i := range want {
		if grouped[i] != want[i] {
			t.Fatalf("Shuffle gave %v; expected %v", grouped, want)
		}
	}
}

func TestShuffleEmpty(t *testing.T) {
	if grouped := Shuffle(nil); len(grouped) != 0 {
		t.Fatalf("Shuffle(nil) gave %v", grouped)
	}
}

func TestShuffleByteOrder(t *testing.T) {
	grouped := Shuffle(ones("b", "B", "a", "Z", "ä"))
	for i := 1; i < len(grouped); i++ {
		if grouped[i-1].Word >= grouped[i].Word {
			t.Fatalf("Shuffle output not strictly increasing: %v", grouped)
		}
	}
	if grouped[0].Word != "B" || grouped[len(grouped)-1].Word != "ä" {
		t.Fatalf("Shuffle should order by bytes, got %v", grouped)
	}
}

func TestShuffleInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	vocab := []string{"x", "y", "z", "alpha", "beta", "gamma", "delta"}
	for round := 0; round < 50; round++ {
		records := make([]types.Record, r.Intn(200))
		total := 0
		want := make(map[string]int)
		for i := range records {
			records[i] = types.Record{Word: vocab[r.Intn(len(vocab))], Count: 1 + r.Intn(3)}
			total += records[i].Count
			want[records[i].Word] += records[i].Count
		}
		grouped := Shuffle(records)
		sum := 0
		for i, rec := range grouped {
			if i > 0 && grouped[i-1].Word >= rec.Word {
				t.Fatalf("round %d: keys not strictly increasing at %d: %v", round, i, grouped)
			}
			if want[rec.Word] != rec.Count {
				t.Fatalf("round %d: %q has %d; expected %d", round, rec.Word, rec.Count, want[rec.Word])
			}
			sum += rec.Count
		}
		if sum != total {
			t.Fatalf("round %d: total %d; expected %d", round, sum, total)
		}
		if len(grouped) != len(want) {
			t.Fatalf("round %d: %d groups; expected %d", round, len(grouped), len(want))
		}
	}
}

func TestGroupedView(t *testing.T) {
	grouped := []types.Record{{Word: "a", Count: 2}, {Word: "b", Count: 1}}
	if got, want := groupedView(grouped), `("a", [1, 1]) ("b", [1])`; got != want {
		t.Fatalf("groupedView = %s; expected %s", got, want)
	}
}

func TestGroupedViewIsBounded(t *testing.T) {
	want := `("a", [1, 1, 1, 1, 1, 1, 1, 1, ... (1000000)])`
	if got := groupedView([]types.Record{{Word: "a", Count: 1_000_000}}); got != want {
		t.Fatalf("groupedView = %s; expected %s", got, want)
	}

	grouped := make([]types.Record, 10_000)
	for i := range grouped {
		grouped[i] = types.Record{Word: "word", Count: 100}
	}
	one := len(groupedView(grouped[:1]))
	got := groupedView(grouped)
	if len(got) > (one+1)*maxViewGroups+64 {
		t.Fatalf("groupedView of %d groups is %d bytes long", len(grouped), len(got))
	}
}
