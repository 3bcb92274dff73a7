package vm

import "testing"

func TestResourceDescriptorUncompressed(t *testing.T) {
	d := ResourceDescriptor{CompressedSize: 10, UncompressedSize: 10}
	if !d.Uncompressed() {
		t.Fatalf("equal sizes should report uncompressed")
	}
	d.CompressedSize = 5
	if d.Uncompressed() {
		t.Fatalf("smaller compressed size should not report uncompressed")
	}
}

func TestResourceDescriptorBankFileName(t *testing.T) {
	d := ResourceDescriptor{BankId: 1}
	if d.BankFileName() != "BANK01" {
		t.Fatalf("got %q, want BANK01", d.BankFileName())
	}
	d.BankId = 13
	if d.BankFileName() != "BANK0D" {
		t.Fatalf("got %q, want BANK0D", d.BankFileName())
	}
}

func TestResourceKindString(t *testing.T) {
	if ResourceKindBytecode.String() != "bytecode" {
		t.Fatalf("got %q", ResourceKindBytecode.String())
	}
	if ResourceKind(99).String() != "unknown" {
		t.Fatalf("got %q, want unknown", ResourceKind(99).String())
	}
}
