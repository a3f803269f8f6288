package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// fakeResolver satisfies Resolver with canned answers
type fakeResolver struct {
	addrs map[string]string
	vrfs  map[string]bool
}

func (f fakeResolver) AddrByInterface(name string) (string, error) {
	if addr, ok := f.addrs[name]; ok {
		return addr, nil
	}
	return "", fmt.Errorf("interface %s: not found", name)
}

func (f fakeResolver) VRFExists(name string) bool {
	return f.vrfs[name]
}

// ValidateTestSuite tests snapshot validation
type ValidateTestSuite struct {
	suite.Suite
	resolver fakeResolver
	snap     *Snapshot
}

// SetupTest runs before each test
func (s *ValidateTestSuite) SetupTest() {
	s.resolver = fakeResolver{
		addrs: map[string]string{"Ethernet1": "192.168.10.5"},
		vrfs:  map[string]bool{"mgmt": true},
	}

	dir := s.T().TempDir()
	failPath := filepath.Join(dir, "failed.conf")
	recoverPath := filepath.Join(dir, "recover.conf")
	s.Require().NoError(os.WriteFile(failPath, []byte("interface Ethernet1\n   shutdown\n"), 0o600))
	s.Require().NoError(os.WriteFile(recoverPath, []byte("interface Ethernet1\n   no shutdown\n"), 0o600))

	s.snap = &Snapshot{
		Endpoints:   []string{"10.0.0.1", "10.0.0.2"},
		FailPath:    failPath,
		RecoverPath: recoverPath,
		Interval:    5 * time.Second,
		PingCount:   2,
		PingTimeout: 2 * time.Second,
	}
}

// TestValidSnapshotPasses tests the happy path
func (s *ValidateTestSuite) TestValidSnapshotPasses() {
	s.NoError(Validate(s.snap, s.resolver))
}

// TestNoEndpoints tests that the endpoint list is mandatory
func (s *ValidateTestSuite) TestNoEndpoints() {
	s.snap.Endpoints = nil
	s.ErrorIs(Validate(s.snap, s.resolver), ErrMissingOption)
}

// TestBadEndpointLiteral tests IPv4 literal enforcement
func (s *ValidateTestSuite) TestBadEndpointLiteral() {
	for _, bad := range []string{"not-an-ip", "10.0.0", "", "::1", "2001:db8::1"} {
		s.snap.Endpoints = []string{"10.0.0.1", bad}
		s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption, bad)
	}
}

// TestMissingActionPaths tests that both action files are mandatory
func (s *ValidateTestSuite) TestMissingActionPaths() {
	failPath := s.snap.FailPath

	s.snap.FailPath = ""
	s.ErrorIs(Validate(s.snap, s.resolver), ErrMissingOption)

	s.snap.FailPath = failPath
	s.snap.RecoverPath = ""
	s.ErrorIs(Validate(s.snap, s.resolver), ErrMissingOption)
}

// TestActionFileMissing tests the unreadable action file case
func (s *ValidateTestSuite) TestActionFileMissing() {
	s.snap.FailPath = filepath.Join(s.T().TempDir(), "gone.conf")
	s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption)
}

// TestActionFileEmpty tests the empty action file case
func (s *ValidateTestSuite) TestActionFileEmpty() {
	empty := filepath.Join(s.T().TempDir(), "empty.conf")
	s.Require().NoError(os.WriteFile(empty, nil, 0o600))

	s.snap.RecoverPath = empty
	s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption)
}

// TestActionFileIsDirectory tests the directory-as-file case
func (s *ValidateTestSuite) TestActionFileIsDirectory() {
	s.snap.FailPath = s.T().TempDir()
	s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption)
}

// TestNumericBounds tests interval, count, timeout and threshold ranges
func (s *ValidateTestSuite) TestNumericBounds() {
	cases := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"zero interval", func(sn *Snapshot) { sn.Interval = 0 }},
		{"zero count", func(sn *Snapshot) { sn.PingCount = 0 }},
		{"negative timeout", func(sn *Snapshot) { sn.PingTimeout = -time.Second }},
		{"timeout above cap", func(sn *Snapshot) { sn.PingTimeout = 3601 * time.Second }},
		{"negative holdup", func(sn *Snapshot) { sn.Holdup = -1 }},
		{"negative holddown", func(sn *Snapshot) { sn.Holddown = -1 }},
	}
	for _, tc := range cases {
		s.SetupTest()
		tc.mutate(s.snap)
		s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption, tc.name)
	}
}

// TestTimeoutCapInclusive tests that the cap itself is accepted
func (s *ValidateTestSuite) TestTimeoutCapInclusive() {
	s.snap.PingTimeout = 3600 * time.Second
	s.NoError(Validate(s.snap, s.resolver))

	s.snap.PingTimeout = 0
	s.NoError(Validate(s.snap, s.resolver))
}

// TestSourceResolution tests that SOURCE resolves to an address
func (s *ValidateTestSuite) TestSourceResolution() {
	s.snap.Source = "Ethernet1"
	s.NoError(Validate(s.snap, s.resolver))
	s.Equal("192.168.10.5", s.snap.SourceAddr)
}

// TestSourceUnresolvable tests the unknown interface case
func (s *ValidateTestSuite) TestSourceUnresolvable() {
	s.snap.Source = "Ethernet9"
	s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption)
}

// TestNoSourceLeavesAddrEmpty tests that SourceAddr is derived only from SOURCE
func (s *ValidateTestSuite) TestNoSourceLeavesAddrEmpty() {
	s.snap.SourceAddr = "10.9.9.9" // stale value must not survive
	s.NoError(Validate(s.snap, s.resolver))
	s.Equal("", s.snap.SourceAddr)
}

// TestVRFValidation tests VRF existence checking
func (s *ValidateTestSuite) TestVRFValidation() {
	s.snap.VRF = "mgmt"
	s.NoError(Validate(s.snap, s.resolver))

	s.snap.VRF = "missing"
	s.ErrorIs(Validate(s.snap, s.resolver), ErrInvalidOption)
}

// TestLoadComposesReadAndValidate tests the single round entry point
func (s *ValidateTestSuite) TestLoadComposesReadAndValidate() {
	store := StaticStore{
		OptEndpoints:   "10.0.0.1",
		OptConfFail:    s.snap.FailPath,
		OptConfRecover: s.snap.RecoverPath,
		OptInterval:    "3",
	}

	snap, err := Load(store, s.resolver)
	s.NoError(err)
	s.Equal([]string{"10.0.0.1"}, snap.Endpoints)
	s.Equal(3*time.Second, snap.Interval)
}

// TestLoadReturnsSnapshotOnError tests that pacing survives a bad configuration
func (s *ValidateTestSuite) TestLoadReturnsSnapshotOnError() {
	snap, err := Load(StaticStore{OptInterval: "nope"}, s.resolver)
	s.ErrorIs(err, ErrInvalidOption)
	s.NotNil(snap)
	s.Equal(DefaultInterval, snap.PaceInterval())
}

// TestValidateSuite runs the validation test suite
func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateTestSuite))
}
