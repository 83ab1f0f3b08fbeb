package overlay

import (
	"context"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

func card(id string, v domain.Variant) *domain.SlotCard {
	return &domain.SlotCard{CardID: id, Variant: v}
}

func sv31() domain.Slot {
	return domain.Slot{Key: "sv3-1-normal", Card: card("sv3-1", domain.VariantNormal)}
}

func TestResolve_LocalRemovalEmptiesBaselineSlot(t *testing.T) {
	got := Resolve(Input{
		Baseline:      []domain.Slot{sv31()},
		LocalRemovals: domain.NewKeySet("sv3-1-normal"),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "sv3-1-normal", got[0].Key)
	assert.Nil(t, got[0].Card)
}

func TestResolve_ExclusionEmptiesBaselineSlot(t *testing.T) {
	got := Resolve(Input{
		Baseline:   []domain.Slot{sv31()},
		Exclusions: domain.NewKeySet(slotkey.Exclusion("sv3-1", domain.VariantNormal)),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "sv3-1-normal", got[0].Key)
	assert.Nil(t, got[0].Card)
}

func TestResolve_ExclusionMatchesVariant(t *testing.T) {
	got := Resolve(Input{
		Own:        []domain.Slot{{Key: "sv3-1-holo", Card: card("sv3-1", domain.VariantHolo)}},
		Exclusions: domain.NewKeySet(slotkey.Exclusion("sv3-1", domain.VariantNormal)),
	})

	require.NotNil(t, got[0].Card)
	assert.Equal(t, domain.VariantHolo, got[0].Card.Variant)
}

func TestResolve_NoBaselineUsesOwnSlots(t *testing.T) {
	own := []domain.Slot{
		{Key: "25", Card: card("base1-58", domain.VariantNormal)},
		{Key: "26"},
	}

	got := Resolve(Input{Own: own})

	assert.Equal(t, own, got)
}

func TestResolve_BaselineKeepsOnlyUserAddedOwnSlots(t *testing.T) {
	own := []domain.Slot{
		{Key: "sv3-1-normal", Card: card("sv3-1", domain.VariantNormal)},
		{Key: "user-1700000000000-abc123", Card: card("promo-1", domain.VariantHolo)},
	}
	baseline := []domain.Slot{{Key: "sv3-1-normal"}, {Key: "sv3-2-normal"}}

	got := Resolve(Input{Baseline: baseline, Own: own})

	require.Len(t, got, 3)
	assert.Equal(t, "sv3-1-normal", got[0].Key)
	assert.Nil(t, got[0].Card)
	assert.Equal(t, "sv3-2-normal", got[1].Key)
	assert.Equal(t, "user-1700000000000-abc123", got[2].Key)
	assert.Equal(t, "promo-1", got[2].Card.CardID)
}

func TestResolve_EmptyBaselineIsPresent(t *testing.T) {
	own := []domain.Slot{{Key: "sv3-1-normal", Card: card("sv3-1", domain.VariantNormal)}}

	got := Resolve(Input{Baseline: []domain.Slot{}, Own: own})

	assert.Empty(t, got)
}

func TestResolve_DoesNotMutateOrAlias(t *testing.T) {
	baseline := []domain.Slot{sv31()}
	own := []domain.Slot{{Key: "user-1-aaaaaa", Card: card("x", domain.VariantNormal)}}

	got := Resolve(Input{
		Baseline:      baseline,
		Own:           own,
		LocalRemovals: domain.NewKeySet("sv3-1-normal"),
	})

	require.NotNil(t, baseline[0].Card)
	got[1].Card.CardID = "changed"
	assert.Equal(t, "x", own[0].Card.CardID)
}

func TestResolve_Idempotent(t *testing.T) {
	in := randomInput(rand.New(rand.NewPCG(1, 2)))

	first := Resolve(in)
	for range 10 {
		assert.Equal(t, first, Resolve(in))
	}
}

// Any slot neither removed nor excluded shows its raw assignment.
func TestResolve_UnhiddenSlotsShowRawAssignment(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for range 200 {
		in := randomInput(rng)
		got := Resolve(in)
		require.Len(t, got, len(in.Own))

		for i, raw := range in.Own {
			hidden := in.LocalRemovals.Has(raw.Key) ||
				(raw.Card != nil && in.Exclusions.Has(slotkey.Exclusion(raw.Card.CardID, raw.Card.Variant)))
			if hidden {
				assert.Nil(t, got[i].Card)
				continue
			}
			assert.Equal(t, raw, got[i])
		}
	}
}

func randomInput(rng *rand.Rand) Input {
	n := rng.IntN(20)
	in := Input{
		LocalRemovals: domain.KeySet{},
		Exclusions:    domain.KeySet{},
	}
	for i := range n {
		key := strconv.Itoa(i + 1)
		s := domain.Slot{Key: key}
		if rng.IntN(2) == 0 {
			v := domain.AllVariants[rng.IntN(len(domain.AllVariants))]
			s.Card = card("c"+strconv.Itoa(rng.IntN(5)), v)
			if rng.IntN(4) == 0 {
				in.Exclusions[slotkey.Exclusion(s.Card.CardID, v)] = struct{}{}
			}
		}
		if rng.IntN(4) == 0 {
			in.LocalRemovals[key] = struct{}{}
		}
		in.Own = append(in.Own, s)
	}
	return in
}

func TestCountSlots(t *testing.T) {
	c := CountSlots([]domain.Slot{sv31(), {Key: "a"}, {Key: "b"}, sv31()})

	assert.Equal(t, Count{Filled: 2, Total: 4}, c)
	assert.InDelta(t, 50.0, c.Percent(), 0.001)
	assert.Zero(t, Count{}.Percent())
}

func TestProgress(t *testing.T) {
	inputs := []Input{
		{Own: []domain.Slot{sv31(), {Key: "x"}}},
		{Baseline: []domain.Slot{sv31()}, LocalRemovals: domain.NewKeySet("sv3-1-normal")},
	}

	counts, err := Progress(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, []Count{{Filled: 1, Total: 2}, {Filled: 0, Total: 1}}, counts)
}

func TestProgress_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	counts, err := Progress(ctx, []Input{{Own: []domain.Slot{sv31()}}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, counts)
}

func TestPreviewCardID(t *testing.T) {
	defaults := domain.DefaultCardOverrides{"25": "base1-58"}

	assert.Equal(t, "sv3-1", PreviewCardID(sv31(), domain.SpeciesEntry{DexID: 25}, defaults))
	assert.Equal(t, "base1-58", PreviewCardID(domain.Slot{Key: "25"}, domain.SpeciesEntry{DexID: 25}, defaults))
	assert.Equal(t, "", PreviewCardID(domain.Slot{Key: "26"}, domain.SpeciesEntry{DexID: 26}, defaults))
	assert.Equal(t, "promo-7", PreviewCardID(domain.Slot{Key: "oak"}, domain.CustomEntry{Key: "oak", CardID: "promo-7"}, defaults))
}
