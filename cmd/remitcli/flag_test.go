package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"testing"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/remittest"
	"github.com/iov-one/remit/remittest/assert"
)

func TestAddressFlag(t *testing.T) {
	addr := remittest.SequenceAddr("relay")

	cases := map[string]struct {
		args      []string
		wantError bool
		wantVal   remit.Address
	}{
		"not provided": {
			args:    []string{},
			wantVal: nil,
		},
		"uppercase hex": {
			args:    []string{"-x", addr.String()},
			wantVal: addr,
		},
		"prefixed hex": {
			args:    []string{"-x", "0x" + addr.String()},
			wantVal: addr,
		},
		"invalid length": {
			args:      []string{"-x", "ABCD"},
			wantError: true,
		},
		"not hex": {
			args:      []string{"-x", "zzz"},
			wantError: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			val := flAddress(fl, "x", "", "")
			err := fl.Parse(tc.args)
			if tc.wantError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				return
			}
			assert.Nil(t, err)
			if !tc.wantVal.Equals(*val) {
				t.Errorf("want %s value, got %s", tc.wantVal, *val)
			}
		})
	}
}

func TestHexFlag(t *testing.T) {
	cases := map[string]struct {
		defaultVal string
		args       []string
		wantError  bool
		wantVal    []byte
	}{
		"use default value": {
			defaultVal: "0102",
			args:       []string{},
			wantVal:    []byte{1, 2},
		},
		"overwrite default value": {
			defaultVal: "0102",
			args:       []string{"-x", "ff00aa"},
			wantVal:    []byte{0xff, 0, 0xaa},
		},
		"no default value": {
			args:    []string{},
			wantVal: nil,
		},
		"invalid hex": {
			args:      []string{"-x", "xyz"},
			wantError: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			val := flHex(fl, "x", tc.defaultVal, "")
			err := fl.Parse(tc.args)
			if tc.wantError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				return
			}
			assert.Nil(t, err)
			if !bytes.Equal(*val, tc.wantVal) {
				t.Errorf("want %x value, got %x", tc.wantVal, *val)
			}
		})
	}
}

func TestRequiredFlags(t *testing.T) {
	fl := flag.NewFlagSet("", flag.ContinueOnError)
	fl.SetOutput(ioutil.Discard)
	fl.String("a", "", "")
	fl.String("b", "", "")
	fl.String("c", "default", "")
	assert.Nil(t, fl.Parse([]string{"-a", ""}))

	assert.Nil(t, required(fl, "a"))
	if err := required(fl, "a", "b", "c"); err == nil {
		t.Fatal("want error for flags that were not set")
	}
}
