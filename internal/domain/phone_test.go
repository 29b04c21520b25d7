package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already digits", input: "81912345678", expected: "81912345678"},
		{name: "formatted input", input: "(81) 91234-5678", expected: "81912345678"},
		{name: "mixed garbage", input: "+55 (81) 9.1234-5678x", expected: "55819123456"},
		{name: "caps at eleven digits", input: "819123456789999", expected: "81912345678"},
		{name: "empty", input: "", expected: ""},
		{name: "letters only", input: "abc", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizePhone(tc.input))
		})
	}
}

func TestFormatPhone(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "full number", input: "81912345678", expected: "(81) 91234-5678"},
		{name: "strips formatting first", input: "(81) 91234-5678", expected: "(81) 91234-5678"},
		{name: "ten digits", input: "8191234567", expected: "(81) 91234-567"},
		{name: "eight digits", input: "81912345", expected: "(81) 91234-5"},
		{name: "seven digits stay ungrouped", input: "8191234", expected: "(81) 91234"},
		{name: "three digits", input: "819", expected: "(81) 9"},
		{name: "two digits", input: "81", expected: "(81"},
		{name: "one digit", input: "8", expected: "(8"},
		{name: "empty", input: "", expected: ""},
		{name: "overlong input is capped", input: "81912345678999", expected: "(81) 91234-5678"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatPhone(tc.input))
		})
	}
}

func TestNormalizeInstagram(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain handle", input: "ana.silva", expected: "@ana.silva"},
		{name: "already prefixed", input: "@ana.silva", expected: "@ana.silva"},
		{name: "multiple at signs collapse", input: "@@@ana", expected: "@ana"},
		{name: "whitespace removed", input: " ana silva ", expected: "@anasilva"},
		{name: "empty stays empty", input: "", expected: ""},
		{name: "only at signs", input: "@@", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeInstagram(tc.input))
		})
	}
}
