package wizard

import (
	"fmt"
	"slices"
	"strconv"
	"testing"

	"campaignhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creative(id, name, shop, typ, subType, video string) domain.Creative {
	return domain.Creative{
		Meta:    domain.Meta{ID: id},
		Name:    name,
		Shop:    shop,
		Type:    typ,
		SubType: subType,
		Video:   video,
	}
}

func sampleInputs() Inputs {
	return Inputs{
		Shops: []domain.Shop{
			{Meta: domain.Meta{ID: "s1"}, Name: "Sunrise Store"},
			{Meta: domain.Meta{ID: "s2"}, Name: "Night Market"},
		},
		Accounts: []domain.Account{
			{Meta: domain.Meta{ID: "a1"}, Name: "Acme", Status: domain.AccountStatusAuthorized},
			{Meta: domain.Meta{ID: "a2"}, Name: "Bolt", Status: domain.AccountStatusUnauthorized},
			{Meta: domain.Meta{ID: "a3"}, Name: "Acme Outlet", Status: domain.AccountStatusUnauthorized},
		},
		Creatives: []domain.Creative{
			creative("c1", "Summer Ad", "s1", domain.CreativeTypeVideo, domain.CreativeSourceTikTok, "https://example.com/1.mp4"),
			creative("c2", "Winter promo", "s1", domain.CreativeTypeVideo, domain.CreativeSourceTikTok, "/creatives/"),
			creative("c3", "Spring AD", "s2", domain.CreativeTypeImage, domain.CreativeSourceAIGC, ""),
			creative("c4", "Affiliate clip", "s2", domain.CreativeTypeVideo, domain.CreativeSourceAffiliate, "/local/clip.mov"),
			creative("c5", "Banner", "s9", "Affiliate", domain.CreativeSourceCustom, "/v/banner.webm"),
		},
	}
}

func ids(list []domain.Creative) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func accountIDs(list []domain.Account) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestNewStateDefaults(t *testing.T) {
	w := New(sampleInputs(), State{})
	assert.Equal(t, ModeAutoselect, w.Mode)
	assert.Equal(t, StepMode, w.Step)
	assert.Equal(t, TabTikTokPosts, w.ActiveTab)
	assert.Len(t, w.Optimizations, len(DefaultOptimizations))
	assert.NotNil(t, w.SelectedTags)
}

func TestTogglesAreInvolutions(t *testing.T) {
	in := sampleInputs()
	for _, start := range [][]string{{}, {"a1"}, {"a1", "a2"}} {
		for _, id := range []string{"a1", "a2", "a3"} {
			w := New(in, State{SelectedAccounts: slices.Clone(start), ExcludedCreatives: slices.Clone(start)})

			w.ToggleAccountInclusion(id)
			w.ToggleAccountInclusion(id)
			assert.ElementsMatch(t, start, w.SelectedAccounts)

			w.ToggleCreativeExclusion(id)
			w.ToggleCreativeExclusion(id)
			assert.ElementsMatch(t, start, w.ExcludedCreatives)
		}
	}

	w := New(in, State{})
	w.SelectTag(in.Creatives[0])
	before := ids(w.SelectedTags)
	w.SelectTag(in.Creatives[1])
	w.RemoveTag("c2")
	assert.Equal(t, before, ids(w.SelectedTags))
}

func TestDisplayNeverContainsExclusions(t *testing.T) {
	in := sampleInputs()
	terms := []string{"", "ad", "s1", "video", "night", "zzz"}
	exclusions := [][]string{{}, {"c1"}, {"c1", "c3"}, {"c2", "c4", "c5"}, {"c1", "c2", "c3", "c4", "c5"}, {"missing"}}

	for _, term := range terms {
		for _, excl := range exclusions {
			w := New(in, State{SourceSearch: term, ExcludedCreatives: excl})

			display := ids(w.CreativesToDisplay())
			for _, id := range display {
				assert.NotContains(t, excl, id)
			}

			// exclusions and display partition the filtered set
			union := append(ids(w.ExclusionsToDisplay()), display...)
			assert.ElementsMatch(t, ids(w.FilteredCreatives()), union, "term %q excl %v", term, excl)
		}
	}
}

func TestFilterableCreativesSkipSelectedTags(t *testing.T) {
	in := sampleInputs()
	for _, query := range []string{"", "ad", "c"} {
		w := New(in, State{ReviewSearch: query})
		w.SelectedTags = []domain.Creative{in.Creatives[0], in.Creatives[3]}
		for _, c := range w.FilterableCreatives() {
			assert.False(t, w.hasTag(c.ID), "query %q offered %s again", query, c.ID)
		}
	}
}

func TestSearchKeepsOriginalOrder(t *testing.T) {
	var creatives []domain.Creative
	names := []string{"Ad one", "beta", "gamma", "BAD two", "delta", "epsilon", "zeta", "eta", "theta", "Third ad"}
	for i, name := range names {
		creatives = append(creatives, creative(fmt.Sprintf("id-%d", i), name, "", domain.CreativeTypeImage, "", ""))
	}

	w := New(Inputs{Creatives: creatives}, State{SourceSearch: "Ad"})
	got := w.CreativesToDisplay()
	require.Len(t, got, 3)
	assert.Equal(t, "Ad one", got[0].Name)
	assert.Equal(t, "BAD two", got[1].Name)
	assert.Equal(t, "Third ad", got[2].Name)
}

func TestSearchMatchesShopLabelIDAndType(t *testing.T) {
	in := sampleInputs()

	w := New(in, State{SourceSearch: "sunrise"})
	assert.Equal(t, []string{"c1", "c2"}, ids(w.FilteredCreatives()))

	w = New(in, State{SourceSearch: "C3"})
	assert.Equal(t, []string{"c3"}, ids(w.FilteredCreatives()))

	w = New(in, State{SourceSearch: "image"})
	assert.Equal(t, []string{"c3"}, ids(w.FilteredCreatives()))

	// unknown shops fall back to their identifier
	w = New(in, State{SourceSearch: "s9"})
	assert.Equal(t, []string{"c5"}, ids(w.FilteredCreatives()))

	// both terms must match
	w = New(in, State{SourceSearch: "video", AccountSearch: "night"})
	assert.Equal(t, []string{"c4"}, ids(w.FilteredCreatives()))
}

func TestAccountFiltering(t *testing.T) {
	in := sampleInputs()

	w := New(in, State{AccountSearch: "acm"})
	assert.Equal(t, []string{"a1", "a3"}, accountIDs(w.FilteredAccounts()))
	assert.Equal(t, []string{"a1"}, accountIDs(w.AuthorizedAccounts()))

	w = New(in, State{AccountSearch: "xyz"})
	assert.Empty(t, w.FilteredAccounts())
	assert.Empty(t, w.AuthorizedAccounts())
	// the unauthorized list ignores the account search
	assert.Equal(t, []string{"a2", "a3"}, accountIDs(w.UnauthorizedAccounts()))
}

func TestSelectTagTwiceKeepsOneEntry(t *testing.T) {
	in := sampleInputs()
	w := New(in, State{ReviewSearch: "summer"})

	w.SelectTag(in.Creatives[0])
	assert.Empty(t, w.ReviewSearch)
	w.ReviewSearch = "summer"
	w.SelectTag(in.Creatives[0])

	assert.Equal(t, []string{"c1"}, ids(w.SelectedTags))
	assert.Empty(t, w.ReviewSearch)

	w.ReviewSearch = "x"
	w.ClearAllTags()
	assert.Empty(t, w.SelectedTags)
	assert.Empty(t, w.ReviewSearch)
}

func TestVideosAndAffiliates(t *testing.T) {
	in := sampleInputs()
	w := New(in, State{})

	assert.Equal(t, []string{"c1", "c4", "c5"}, ids(w.CreativesWithVideos()))
	assert.Equal(t, []string{"c4", "c5"}, ids(w.AffiliateCreatives()))

	w.RecordVideoLoadFailure("c4")
	w.RecordVideoLoadFailure("c4")
	assert.Equal(t, []string{"c4"}, w.FailedVideos)
	assert.Equal(t, []string{"c1", "c5"}, ids(w.CreativesWithVideos()))
	assert.Contains(t, ids(w.CreativesToDisplay()), "c4", "a failed video stays in the list")

	w.ToggleCreativeExclusion("c5")
	assert.Equal(t, []string{"c1"}, ids(w.CreativesWithVideos()))
	assert.Equal(t, []string{"c4"}, ids(w.AffiliateCreatives()))

	require.NoError(t, w.SetTab(TabAffiliates))
	assert.Equal(t, []string{"c4"}, ids(w.TabCreatives()))
}

func TestApplyDispatchesActions(t *testing.T) {
	in := sampleInputs()
	w := New(in, State{})

	steps := []Action{
		{Type: ActionSetMode, Value: string(ModeManual)},
		{Type: ActionNextStep},
		{Type: ActionToggleAccount, ID: "a1"},
		{Type: ActionSearchSources, Value: "ad"},
		{Type: ActionToggleExclusion, ID: "c3"},
		{Type: ActionSetStep, Value: strconv.Itoa(StepOptimize)},
		{Type: ActionToggleOptimization, Value: "autoCrop"},
		{Type: ActionNextStep},
		{Type: ActionNextStep},
		{Type: ActionSelectTag, ID: "c1"},
		{Type: ActionSelectTag, ID: "c3"},
		{Type: ActionSetTab, Value: string(TabAffiliates)},
	}
	for _, a := range steps {
		require.NoError(t, w.Apply(a), "action %s", a.Type)
	}

	assert.Equal(t, ModeManual, w.Mode)
	assert.Equal(t, StepReview, w.Step)
	assert.Equal(t, []string{"a1"}, w.SelectedAccounts)
	assert.Equal(t, []string{"c3"}, w.ExcludedCreatives)
	assert.True(t, w.Optimizations["autoCrop"])
	assert.Equal(t, TabAffiliates, w.ActiveTab)
	assert.Equal(t, []string{"c1", "c3"}, ids(w.SelectedTags))

	require.NoError(t, w.Apply(Action{Type: ActionPrevStep}))
	assert.Equal(t, StepOptimize, w.Step)

	assert.ErrorIs(t, w.Apply(Action{Type: "explode"}), domain.ErrValidation)
	assert.ErrorIs(t, w.Apply(Action{Type: ActionSetMode, Value: "random"}), domain.ErrValidation)
	assert.ErrorIs(t, w.Apply(Action{Type: ActionSetStep, Value: "9"}), domain.ErrValidation)
	assert.ErrorIs(t, w.Apply(Action{Type: ActionSetStep, Value: "two"}), domain.ErrValidation)
	assert.ErrorIs(t, w.Apply(Action{Type: ActionToggleOptimization, Value: "nope"}), domain.ErrValidation)
	assert.ErrorIs(t, w.Apply(Action{Type: ActionSelectTag, ID: "missing"}), domain.ErrNotFound)
}

func TestSelectionApplyTo(t *testing.T) {
	in := sampleInputs()
	w := New(in, State{})
	w.ToggleAccountInclusion("a1")
	w.SelectTag(in.Creatives[0])
	w.SelectTag(in.Creatives[2])
	w.ToggleCreativeExclusion("c3")

	campaign := &domain.Campaign{Name: "Launch"}
	require.NoError(t, w.Selection().ApplyTo(campaign))
	assert.Equal(t, domain.CreativeModeAutoselect, campaign.CreativeMode)
	assert.Equal(t, []string{"a1"}, campaign.SelectedAccounts)
	assert.Equal(t, []string{"c1"}, campaign.SelectedCreatives)
	assert.Equal(t, []string{"c3"}, campaign.ExcludedCreatives)

	reopened := FromCampaign(in, campaign)
	assert.Equal(t, []string{"c1"}, ids(reopened.SelectedTags))
	assert.Equal(t, []string{"a1"}, reopened.SelectedAccounts)
}

func TestManualLimitEnforcedOnSave(t *testing.T) {
	var many []domain.Creative
	for i := 0; i <= ManualLimit; i++ {
		many = append(many, creative(fmt.Sprintf("m%d", i), "x", "", domain.CreativeTypeImage, "", ""))
	}

	w := New(Inputs{Creatives: many}, State{Mode: ModeManual})
	for _, c := range many {
		w.SelectTag(c)
	}
	require.Len(t, w.SelectedTags, ManualLimit+1, "selection itself is not capped")

	campaign := &domain.Campaign{}
	assert.ErrorIs(t, w.Selection().ApplyTo(campaign), domain.ErrValidation)
	assert.Empty(t, campaign.SelectedCreatives)

	w.RemoveTag("m0")
	require.NoError(t, w.Selection().ApplyTo(campaign))
	assert.Len(t, campaign.SelectedCreatives, ManualLimit)

	require.NoError(t, w.SetMode(ModeAutoselect))
	w.SelectTag(many[0])
	assert.NoError(t, w.Selection().Validate(), "autoselect has no cap")
}

func TestViewCarriesEveryDerivedSet(t *testing.T) {
	w := New(sampleInputs(), State{})
	v := w.View()
	assert.Equal(t, ManualLimit, v.ManualLimit)
	assert.Len(t, v.CreativesToDisplay, 5)
	assert.Len(t, v.FilterableCreatives, 5)
	assert.Equal(t, ids(v.CreativesWithVideos), ids(v.TabCreatives))
}

func TestNewResolvesPostedTags(t *testing.T) {
	in := sampleInputs()
	forged := domain.Creative{Meta: domain.Meta{ID: "c1"}, Name: "renamed", Shop: "elsewhere"}
	state := State{SelectedTags: []domain.Creative{
		forged,
		{Meta: domain.Meta{ID: "ghost"}},
		in.Creatives[2],
		in.Creatives[2],
	}}

	w := New(in, state)
	require.Equal(t, []string{"c1", "c3"}, ids(w.SelectedTags))
	assert.Equal(t, in.Creatives[0], w.SelectedTags[0], "tag fields come from the visible creative")
	assert.Equal(t, []string{"c1", "c3"}, w.Selection().Creatives)
	assert.Len(t, state.SelectedTags, 4, "posted state is not mutated")
}
