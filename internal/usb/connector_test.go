package usb

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var duoCast = DeviceInfo{
	Identity: Identity{Vendor: 0x03F0, Product: 0x098C},
	Bus:      1,
	Address:  4,
}

// fakeBackend replays scripted enumeration snapshots and opens.
type fakeBackend struct {
	lists     []listResult
	listCalls int

	openErrs  []error
	openCalls int
	device    *fakeDevice

	closed bool
}

type listResult struct {
	infos []DeviceInfo
	err   error
}

func (b *fakeBackend) ListDevices() ([]DeviceInfo, error) {
	idx := b.listCalls
	if idx >= len(b.lists) {
		idx = len(b.lists) - 1 // keep replaying the last snapshot
	}
	b.listCalls++
	res := b.lists[idx]
	return res.infos, res.err
}

func (b *fakeBackend) OpenDevice(info DeviceInfo) (Device, error) {
	call := b.openCalls
	b.openCalls++
	if call < len(b.openErrs) && b.openErrs[call] != nil {
		return nil, b.openErrs[call]
	}
	if b.device == nil {
		b.device = &fakeDevice{}
	}
	return b.device, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

// fakeDevice scripts per-interface claim outcomes and records releases.
type fakeDevice struct {
	claimErrs map[int][]error
	claims    map[int]int
	releases  map[int]int
	closes    int
}

func (d *fakeDevice) Claim(number int) (func(), error) {
	if d.claims == nil {
		d.claims = map[int]int{}
		d.releases = map[int]int{}
	}
	call := d.claims[number]
	d.claims[number]++
	if errs := d.claimErrs[number]; call < len(errs) && errs[call] != nil {
		return nil, errs[call]
	}
	return func() { d.releases[number]++ }, nil
}

func (d *fakeDevice) SendPacket(p []byte) (int, error) { return len(p), nil }
func (d *fakeDevice) ReadPacket(p []byte) (int, error) { return len(p), nil }
func (d *fakeDevice) Close() error {
	d.closes++
	return nil
}

func testConnector(b Backend) *Connector {
	return &Connector{
		Backend:    b,
		EnumDelay:  time.Millisecond,
		OpenDelay:  time.Millisecond,
		ClaimDelay: time.Millisecond,
	}
}

func TestFindMatchesOnFirstAttempt(t *testing.T) {
	// Scenario A: the allow-listed DuoCast is present; no retries consumed.
	b := &fakeBackend{lists: []listResult{{infos: []DeviceInfo{duoCast}}}}

	info, err := testConnector(b).Find()

	require.NoError(t, err)
	assert.Equal(t, duoCast, info)
	assert.Equal(t, 1, b.listCalls)
}

func TestFindSkipsIncompatibleDevices(t *testing.T) {
	hub := DeviceInfo{Identity: Identity{Vendor: 0x1D6B, Product: 0x0003}}
	b := &fakeBackend{lists: []listResult{
		{infos: []DeviceInfo{hub}},
		{infos: []DeviceInfo{hub, duoCast}},
	}}

	info, err := testConnector(b).Find()

	require.NoError(t, err)
	assert.Equal(t, duoCast, info)
	assert.Equal(t, 2, b.listCalls)
}

func TestFindToleratesTransientEnumerationErrors(t *testing.T) {
	b := &fakeBackend{lists: []listResult{
		{err: errors.New("enumeration glitch")},
		{infos: []DeviceInfo{duoCast}},
	}}

	info, err := testConnector(b).Find()

	require.NoError(t, err)
	assert.Equal(t, duoCast, info)
}

func TestFindPersistentEnumerationFailureIsSubsystemError(t *testing.T) {
	noAccess := errors.New("libusb: permission denied")
	b := &fakeBackend{lists: []listResult{{err: noAccess}}}

	_, err := testConnector(b).Find()

	var enumErr *EnumError
	require.ErrorAs(t, err, &enumErr)
	assert.ErrorIs(t, err, noAccess)
	assert.Equal(t, ExitUsbInit, ExitCode(err), "a broken bus is not a missing device")
	assert.Equal(t, 3, b.listCalls)
}

func TestFindEnumerationErrorThenEmptyBusIsNoDevice(t *testing.T) {
	b := &fakeBackend{lists: []listResult{
		{err: errors.New("enumeration glitch")},
		{infos: nil},
	}}

	_, err := testConnector(b).Find()

	assert.ErrorIs(t, err, ErrNoDeviceFound)
}

func TestFindExhaustsRetries(t *testing.T) {
	b := &fakeBackend{lists: []listResult{{infos: nil}}}

	_, err := testConnector(b).Find()

	assert.ErrorIs(t, err, ErrNoDeviceFound)
	assert.Equal(t, 3, b.listCalls, "exactly three enumeration attempts")
}

func TestEstablishRetriesOpen(t *testing.T) {
	b := &fakeBackend{
		lists:    []listResult{{infos: []DeviceInfo{duoCast}}},
		openErrs: []error{errors.New("open race"), nil},
	}

	sess, err := testConnector(b).Establish(duoCast)

	require.NoError(t, err)
	assert.Equal(t, 2, b.openCalls)
	assert.Equal(t, "legacy", sess.Profile.Name)
	sess.Close()
	assert.Equal(t, 1, b.device.closes)
}

func TestEstablishOpenFailureAfterRetries(t *testing.T) {
	openRace := errors.New("open race")
	b := &fakeBackend{openErrs: []error{openRace, openRace, openRace}}

	_, err := testConnector(b).Establish(duoCast)

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, 3, b.openCalls)
	assert.Equal(t, ExitOpenOrClaim, ExitCode(err))
}

func TestClaimReleasesPartialClaims(t *testing.T) {
	// Scenario B: interface 0 claims fine, interface 1 stays busy. The lone
	// claim must be released before every retry and the failure classified
	// as busy.
	busy := errors.Wrap(ErrDeviceBusy, "claim interface 1")
	dev := &fakeDevice{claimErrs: map[int][]error{
		1: {busy, busy, busy},
	}}
	b := &fakeBackend{device: dev}

	_, err := testConnector(b).Establish(duoCast)

	var claimErr *ClaimError
	require.ErrorAs(t, err, &claimErr)
	assert.Equal(t, ClaimBusy, claimErr.Kind)
	assert.Equal(t, 3, dev.claims[0], "claim pair retried three times")
	assert.Equal(t, 3, dev.releases[0], "interface 0 released after every failed pair")
	assert.Zero(t, dev.releases[1])
	assert.Equal(t, 1, dev.closes, "device closed after claim failure")
	assert.Equal(t, ExitOpenOrClaim, ExitCode(err))
}

func TestClaimClassifiesNoDevice(t *testing.T) {
	gone := errors.Wrap(ErrDeviceGone, "claim interface 0")
	dev := &fakeDevice{claimErrs: map[int][]error{
		0: {gone, gone, gone},
	}}
	b := &fakeBackend{device: dev}

	_, err := testConnector(b).Establish(duoCast)

	var claimErr *ClaimError
	require.ErrorAs(t, err, &claimErr)
	assert.Equal(t, ClaimNoDevice, claimErr.Kind)
}

func TestClaimSucceedsOnRetry(t *testing.T) {
	dev := &fakeDevice{claimErrs: map[int][]error{
		1: {errors.Wrap(ErrDeviceBusy, "slow hub"), nil},
	}}
	b := &fakeBackend{device: dev}

	sess, err := testConnector(b).Establish(duoCast)

	require.NoError(t, err)
	assert.Equal(t, 1, dev.releases[0], "partial claim released before the retry")

	sess.Close()
	sess.Close() // second close is a no-op
	assert.Equal(t, 2, dev.releases[0], "one release from the failed pair, one from Close")
	assert.Equal(t, 1, dev.releases[1])
	assert.Equal(t, 1, dev.closes, "handle closed exactly once")
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitUsbInit, ExitCode(&InitError{Err: errors.New("no usbfs")}))
	assert.Equal(t, ExitUsbInit, ExitCode(&EnumError{Err: errors.New("bus walk failed")}))
	assert.Equal(t, ExitNoDevice, ExitCode(ErrNoDeviceFound))
	assert.Equal(t, ExitOpenOrClaim, ExitCode(&ClaimError{Kind: ClaimBusy}))
	assert.Equal(t, 1, ExitCode(errors.New("anything else")))
}
