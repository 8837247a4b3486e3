package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainValid(t *testing.T) {
	for _, d := range AllDomains() {
		assert.True(t, d.Valid(), "domain %q should be valid", d)
	}

	assert.False(t, Domain("Memes").Valid())
	assert.False(t, Domain("").Valid())
	assert.False(t, Domain("biology").Valid(), "labels are case sensitive")
}

func TestAllDomainsOrder(t *testing.T) {
	expected := []Domain{
		"Biology",
		"Physics",
		"Chemistry",
		"Geography & Environment",
		"Space Science",
		"Engineering",
		"Computer Science",
		"Mathematics",
	}
	assert.Equal(t, expected, AllDomains())
}

func TestAllDomainsReturnsCopy(t *testing.T) {
	domains := AllDomains()
	domains[0] = "Tampered"
	assert.Equal(t, DomainBiology, AllDomains()[0])
}

func TestIsErrorResult(t *testing.T) {
	assert.True(t, IsErrorResult(ErrorMarker+" I don't do that. I only create educational and scientific visuals."))
	assert.False(t, IsErrorResult("data:image/png;base64,AQID"))
	assert.False(t, IsErrorResult("The mitochondria is the powerhouse of the cell."))
}
