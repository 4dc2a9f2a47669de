package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

const threeCycleHCL = `
node "N" {
  type          = "generic"
  initial_state = "a"
  ops           = ["next"]

  state "a" {
    alive = true
    op "next" {
      to = "b"
    }
  }
  state "b" {
    alive = true
    op "next" {
      to = "c"
    }
  }
  state "c" {
    alive = true
    op "next" {
      to = "a"
    }
  }
}
`

func writeHCL(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDir_ThreeCycle(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "topology.hcl", threeCycleHCL)

	result, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(result.Specs) != 1 {
		t.Fatalf("expected 1 node, got %d", len(result.Specs))
	}

	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		t.Fatalf("BuildApplication: %v", err)
	}
	if app.GlobalState != "N=a" {
		t.Fatalf("expected initial global state N=a, got %s", app.GlobalState)
	}

	reached := topology.Reachable(app)
	if len(reached) != 3 {
		t.Errorf("expected 3 reachable states, got %d", len(reached))
	}
}

const requirementGatingHCL = `
node "A" {
  type          = "generic"
  initial_state = "off"
  caps          = ["c"]
  ops           = ["flip"]

  state "on" {
    alive = true
    caps  = ["c"]
    op "flip" {
      to = "off"
    }
  }
  state "off" {
    alive = true
    op "flip" {
      to = "on"
    }
  }
}

node "B" {
  type          = "generic"
  initial_state = "s"
  reqs          = ["r"]
  ops           = ["start"]

  state "s" {
    alive = true
    op "start" {
      to = "run"
      requires {
        reqs = ["r"]
      }
    }
  }
  state "run" {
    alive = true
    reqs  = ["r"]
  }
}

binding {
  req = "r"
  cap = "c"
}
`

func TestLoadDir_RequirementGatingAndBinding(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "topology.hcl", requirementGatingHCL)

	result, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if result.Binding["r"] != "c" {
		t.Fatalf("expected binding r -> c, got %+v", result.Binding)
	}

	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		t.Fatalf("BuildApplication: %v", err)
	}
	if app.CanPerformOp("B", "start") {
		t.Fatal("expected start to be illegal from (A=off, B=s)")
	}

	app, err = app.PerformOp("A", "flip")
	if err != nil {
		t.Fatalf("PerformOp: %v", err)
	}
	if !app.CanPerformOp("B", "start") {
		t.Fatal("expected start to be legal once A offers c")
	}
}

const containmentHCL = `
node "H" {
  type          = "host"
  initial_state = "up"
  ops           = ["crash", "boot"]

  state "up" {
    alive = true
    op "crash" {
      to = "down"
    }
  }
  state "down" {
    alive = false
    op "boot" {
      to = "up"
    }
  }
}

node "G" {
  type          = "guest"
  initial_state = "idle"
  ops           = ["work"]

  state "idle" {
    alive = true
    op "work" {
      to = "busy"
    }
  }
  state "busy" {
    alive = true
  }
}

contained_by {
  node      = "G"
  container = "H"
}

hard_reset_enabled = true
`

func TestLoadDir_ContainmentAndHardReset(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "topology.hcl", containmentHCL)

	result, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if !result.HasHardReset {
		t.Fatal("expected hard reset to be enabled")
	}
	if result.ContainedBy["G"] != "H" {
		t.Fatalf("expected G contained by H, got %+v", result.ContainedBy)
	}

	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		t.Fatalf("BuildApplication: %v", err)
	}
	app, err = app.PerformOp("G", "work")
	if err != nil {
		t.Fatalf("PerformOp work: %v", err)
	}
	if app.CanHardReset("G") {
		t.Fatal("expected hard reset of G to be illegal while H is up")
	}

	app, err = app.PerformOp("H", "crash")
	if err != nil {
		t.Fatalf("PerformOp crash: %v", err)
	}
	if !app.CanHardReset("G") {
		t.Fatal("expected hard reset of G to be legal once H is down")
	}
}

func TestLoadDir_DuplicateNodeIsRejected(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", threeCycleHCL)
	writeHCL(t, dir, "b.hcl", threeCycleHCL)

	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected duplicate node declaration across files to error")
	}
}
