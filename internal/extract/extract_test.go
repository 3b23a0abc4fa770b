package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

const sampleCard = `
        ABC Corporation Ltd
        Tel: +1 234 567 8900
        Cell: 0720953165
        Email: info@abccorp.com
        Website: www.abccorp.com
        1234 Some Avenue, Nairobi, Kenya
        Then we traveled to Mombasa in Kenya.
    `

func TestEmails(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plus and dots in local part", text: "contact: a.b+c@sub.example.co / ignore", want: []string{"a.b+c@sub.example.co"}},
		{name: "duplicates collapse", text: "x@a.io y@b.io x@a.io", want: []string{"x@a.io", "y@b.io"}},
		{name: "no match", text: "no address here", want: []string{}},
		{name: "empty", text: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Emails(tt.text))
		})
	}
}

func TestPhones(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "cell keyword", text: "Cell: 0720953165", want: []string{"0720953165"}},
		{name: "leading zero without keyword", text: "random 0720953165 noise", want: []string{"0720953165"}},
		{name: "international", text: "Tel: +1 234 567 8900", want: []string{"+1 234 567 8900"}},
		{name: "keyword admits plain digits", text: "Phone 123 456 7890", want: []string{"123 456 7890"}},
		{name: "plain digits without keyword", text: "Ref 123 456 7890", want: []string{}},
		{name: "too short", text: "Tel: 12345", want: []string{}},
		{name: "order of appearance", text: "Mobile 0733577492 or +44 20 7946 0958 or 0733577492", want: []string{"0733577492", "+44 20 7946 0958"}},
		{name: "empty", text: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phones(tt.text))
		})
	}
}

func TestWebsites(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "www", text: "Visit www.abccorp.com today", want: []string{"www.abccorp.com"}},
		{name: "https keeps path", text: "see https://abc.co/about and www.x.org", want: []string{"https://abc.co/about", "www.x.org"}},
		{name: "bare domain ignored", text: "abccorp.com", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Websites(tt.text))
		})
	}
}

func TestSocialHandles(t *testing.T) {
	got := SocialHandles("Follow us FB:abccorp")
	require.Len(t, got, 3)
	assert.Equal(t, "FB:abccorp", entity.Deref(got[entity.Facebook]))
	assert.Nil(t, got[entity.Instagram])
	assert.Nil(t, got[entity.Twitter])

	got = SocialHandles("instagram.com/abc_corp | twitter.com/abccorp | facebook.com/abc")
	assert.Equal(t, "facebook.com/abc", entity.Deref(got[entity.Facebook]))
	assert.Equal(t, "instagram.com/abc_corp", entity.Deref(got[entity.Instagram]))
	assert.Equal(t, "twitter.com/abccorp", entity.Deref(got[entity.Twitter]))

	got = SocialHandles("ig: none, but IG/abc and fb:xyz")
	assert.Equal(t, "fb:xyz", entity.Deref(got[entity.Facebook]))
	assert.Equal(t, "IG/", entity.Deref(got[entity.Instagram]))
}

func TestAddresses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "street with city and country", text: "1234 Some Avenue, Nairobi, Kenya", want: []string{"1234 Some Avenue, Nairobi, Kenya"}},
		{name: "po box", text: "P.O. Box 4521 Nairobi", want: []string{"P.O. Box 4521"}},
		{name: "postal code tail", text: "Kimathi Street, Nairobi 00100", want: []string{"Kimathi Street, Nairobi 00100"}},
		{name: "no street keyword", text: "Nairobi, Kenya", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Addresses(tt.text))
		})
	}
}

func TestFilterAddresses(t *testing.T) {
	got := FilterAddresses(
		[]string{"Kenya", "1234 Some Avenue, Nairobi, Kenya"},
		[]string{"KENYA", "Nairobi", " Nairobi "},
		nil,
	)
	assert.Equal(t, []string{"1234 Some Avenue, Nairobi, Kenya", "Nairobi"}, got)

	got = FilterAddresses([]string{"Kenya"}, nil, []string{})
	assert.Equal(t, []string{"Kenya"}, got)

	assert.Equal(t, "1234 Some Avenue, Nairobi, Kenya, Nairobi", entity.Deref(JoinAddress([]string{"1234 Some Avenue, Nairobi, Kenya", "Nairobi"})))
	assert.Nil(t, JoinAddress(nil))
}

func TestAllOnSampleCard(t *testing.T) {
	c := All(sampleCard)

	assert.Equal(t, []string{"info@abccorp.com"}, c.Emails)
	assert.Equal(t, []string{"+1 234 567 8900", "0720953165"}, c.Phones)
	assert.Equal(t, []string{"www.abccorp.com"}, c.Websites)
	assert.Equal(t, []string{"1234 Some Avenue, Nairobi, Kenya"}, c.Addresses)
	for _, p := range entity.Platforms {
		assert.Nil(t, c.Social[p], string(p))
	}
}

func TestDetectorsAreTotalAndIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t ",
		"Ünïcødé 電話 テスト ☎ +٩٦٦",
		"@@@ www. http:// P.O. Box ,,,, 0/0/0",
		sampleCard,
	}
	for _, in := range inputs {
		first := All(in)
		second := All(in)
		assert.Equal(t, first, second)
		assert.NotNil(t, first.Emails)
		assert.NotNil(t, first.Phones)
		assert.NotNil(t, first.Websites)
		assert.NotNil(t, first.Addresses)
		assert.Len(t, first.Social, 3)
	}
}
