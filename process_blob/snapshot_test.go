package process_blob

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"soulmem/pattern"
	"soulmem/process"
)

func TestSnapshotReadWrite(t *testing.T) {
	s := NewSnapshot(42, "eldenring.exe")
	s.AddRegion(0x1000, make([]byte, 0x100))
	s.AddRegion(0x7fff0000, make([]byte, 0x100))

	if err := s.WriteUINT64(0x1010, 0x7fff0020); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteUINT32(0x7fff0020, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}

	ptr, err := s.ReadPOINTER(0x1010)
	if err != nil {
		t.Fatal(err)
	}
	if ptr != 0x7fff0020 {
		t.Errorf("ReadPOINTER = %#x, want 0x7fff0020", uint64(ptr))
	}

	v, err := s.ReadUINT32(ptr)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Errorf("ReadUINT32 = %#x, want 0xdeadbeef", v)
	}
}

func TestSnapshotUnmappedRead(t *testing.T) {
	s := NewSnapshot(1, "test")
	s.AddRegion(0x1000, make([]byte, 0x10))

	if _, err := s.ReadMemory(0x2000, 4); err == nil {
		t.Error("expected error reading unmapped address")
	}

	// A read running off the end of a region must fail too.
	if _, err := s.ReadMemory(0x100c, 8); err == nil {
		t.Error("expected error reading past region end")
	}

	if s.IsValidAddress(0x2000) {
		t.Error("0x2000 should not be valid")
	}
	if !s.IsValidAddress(0x1008) {
		t.Error("0x1008 should be valid")
	}
}

func TestSnapshotScan(t *testing.T) {
	s := NewSnapshot(1, "test")

	region := make([]byte, 0x200)
	sig := []byte{0x48, 0x8b, 0x0d, 0x11, 0x22, 0x33, 0x44, 0x99, 0x33, 0xc2}
	copy(region[0x80:], sig)
	s.AddModule("/games/DarkSouls.exe", 0x140000000, region)

	aob := pattern.MustParse("48 8b 0d ?? ?? ?? ?? 99 33 c2")

	addr, err := s.ScanFirst(aob)
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0x140000080 {
		t.Errorf("ScanFirst = %#x, want 0x140000080", uint64(addr))
	}

	if _, err := s.ScanFirst(pattern.MustParse("de ad be ef 01 02")); err != process.ErrPatternNotFound {
		t.Errorf("ScanFirst miss = %v, want ErrPatternNotFound", err)
	}
}

func TestSnapshotScanValues(t *testing.T) {
	s := NewSnapshot(1, "test")
	s.AddRegion(0x4000, make([]byte, 0x100))

	if err := s.WriteUINT32(0x4040, 123456); err != nil {
		t.Fatal(err)
	}

	got, err := s.ScanInteger(123456, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []process.ProcessMemoryAddress{0x4040}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanInteger (-want +got):\n%s", diff)
	}

	if err := s.WriteMemory(0x4080, []byte("BossDefeated")); err != nil {
		t.Fatal(err)
	}
	strHits, err := s.ScanString("BossDefeated", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(strHits) != 1 || strHits[0] != 0x4080 {
		t.Errorf("ScanString = %v, want [0x4080]", strHits)
	}
}

func TestSnapshotFindModule(t *testing.T) {
	s := NewSnapshot(1, "sekiro.exe")
	s.AddModule("/games/sekiro.exe", 0x140000000, make([]byte, 0x1000))
	s.AddRegion(0x7fff0000, make([]byte, 0x100))

	region, err := s.FindModule("sekiro.exe")
	if err != nil {
		t.Fatal(err)
	}
	if region.Address != 0x140000000 {
		t.Errorf("module base = %#x, want 0x140000000", region.Address)
	}

	if _, err := s.FindModule("missing.exe"); err == nil {
		t.Error("expected error for missing module")
	}
}

func TestCaptureLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")

	src := NewSnapshot(1234, "darksouls3.exe")
	module := make([]byte, 0x200)
	copy(module[0x40:], []byte{0x48, 0xc7, 0x05, 0x01, 0x02, 0x03, 0x04})
	src.AddModule("/games/DarkSoulsIII.exe", 0x140000000, module)
	src.AddRegion(0x7fff0000, []byte{0xaa, 0xbb, 0xcc, 0xdd})

	if err := src.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadSnapshot(dir)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.GetPID() != 1234 {
		t.Errorf("pid = %d, want 1234", loaded.GetPID())
	}
	if loaded.Name() != "darksouls3.exe" {
		t.Errorf("name = %q, want darksouls3.exe", loaded.Name())
	}

	data, err := loaded.ReadMemory(0x140000040, 7)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x48, 0xc7, 0x05, 0x01, 0x02, 0x03, 0x04}, data); diff != "" {
		t.Errorf("module bytes (-want +got):\n%s", diff)
	}

	srcMap, _ := src.GetMemoryMap()
	loadedMap, _ := loaded.GetMemoryMap()
	if diff := cmp.Diff(srcMap, loadedMap); diff != "" {
		t.Errorf("memory map (-want +got):\n%s", diff)
	}

	// Module identity survives the round trip.
	if _, err := loaded.FindModule("darksoulsiii.exe"); err != nil {
		t.Errorf("FindModule after load: %v", err)
	}
}
