package kernel

import "testing"

func TestResolveGuestPathBasic(t *testing.T) {
	roots := PathRoots{"mc0:": "/saves/mc0"}
	got, err := ResolveGuestPath(roots, "mc0:/BESLES-12345/save.dat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/saves/mc0/BESLES-12345/save.dat"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveGuestPathStripsISOVersionSuffix(t *testing.T) {
	roots := PathRoots{"cdrom0:": "/discs/current"}
	got, err := ResolveGuestPath(roots, "cdrom0:/SYSTEM.CNF;1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/discs/current/SYSTEM.CNF"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveGuestPathLeavesNonNumericSemicolonTailAlone(t *testing.T) {
	roots := PathRoots{"cdrom0:": "/discs/current"}
	got, err := ResolveGuestPath(roots, "cdrom0:/WEIRD;NAME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/discs/current/WEIRD;NAME"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveGuestPathNormalizesBackslashes(t *testing.T) {
	roots := PathRoots{"mc0:": "/saves/mc0"}
	got, err := ResolveGuestPath(roots, `mc0:\BESLES-12345\save.dat`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/saves/mc0/BESLES-12345/save.dat"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveGuestPathUnknownPrefix(t *testing.T) {
	roots := PathRoots{"mc0:": "/saves/mc0"}
	if _, err := ResolveGuestPath(roots, "pfs0:/foo.bin"); err == nil {
		t.Fatal("expected an error for an unrecognized prefix")
	}
}

func TestResolveGuestPathNoColonIsError(t *testing.T) {
	roots := PathRoots{"mc0:": "/saves/mc0"}
	if _, err := ResolveGuestPath(roots, "just-a-filename.bin"); err == nil {
		t.Fatal("expected an error when no prefix is present")
	}
}
