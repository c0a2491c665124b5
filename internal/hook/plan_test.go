package hook

import (
	"errors"
	"reflect"
	"testing"

	"github.com/qpmx-labs/qpmx-setup/internal/platform"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		variant Variant
		want    []Operation
	}{
		{
			name:    "windows all users",
			ctx:     Context{OS: platform.Windows, AllUsers: true},
			variant: VariantLink,
			want: []Operation{{
				Name:     OpExecute,
				Args:     []string{"cmd", "/c", "xset", "path", "%PATH%;@TargetDir@", "/M"},
				Elevated: true,
			}},
		},
		{
			name:    "windows current user",
			ctx:     Context{OS: platform.Windows},
			variant: VariantLink,
			want: []Operation{{
				Name: OpExecute,
				Args: []string{"cmd", "/c", "xset", "path", "%PATH%;@TargetDir@"},
			}},
		},
		{
			name:    "windows ignores variant",
			ctx:     Context{OS: platform.Windows, AllUsers: true},
			variant: VariantExec,
			want: []Operation{{
				Name:     OpExecute,
				Args:     []string{"cmd", "/c", "xset", "path", "%PATH%;@TargetDir@", "/M"},
				Elevated: true,
			}},
		},
		{
			name:    "link variant x11",
			ctx:     Context{OS: platform.X11},
			variant: VariantLink,
			want: []Operation{{
				Name:     OpCreateLink,
				Args:     []string{"/usr/bin/qpmx", "@TargetDir@/qpmx"},
				Elevated: true,
			}},
		},
		{
			name:    "link variant x11 all users",
			ctx:     Context{OS: platform.X11, AllUsers: true},
			variant: VariantLink,
			want: []Operation{{
				Name:     OpCreateLink,
				Args:     []string{"/usr/bin/qpmx", "@TargetDir@/qpmx"},
				Elevated: true,
			}},
		},
		{
			name:    "link variant mac",
			ctx:     Context{OS: platform.Mac, AllUsers: true},
			variant: VariantLink,
			want:    nil,
		},
		{
			name:    "exec variant all users",
			ctx:     Context{OS: platform.X11, AllUsers: true},
			variant: VariantExec,
			want: []Operation{{
				Name:     OpExecute,
				Args:     []string{"ln", "-s", "@TargetDir@/qpmx", "/usr/bin/qpmx"},
				Elevated: true,
			}},
		},
		{
			name:    "exec variant mac all users",
			ctx:     Context{OS: platform.Mac, AllUsers: true},
			variant: VariantExec,
			want: []Operation{{
				Name:     OpExecute,
				Args:     []string{"ln", "-s", "@TargetDir@/qpmx", "/usr/bin/qpmx"},
				Elevated: true,
			}},
		},
		{
			name:    "exec variant current user",
			ctx:     Context{OS: platform.X11},
			variant: VariantExec,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.ctx, tt.variant)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanDoesNotAlias(t *testing.T) {
	ctx := Context{OS: platform.Windows, AllUsers: true}
	first := Plan(ctx, VariantLink)
	first[0].Args[0] = "changed"
	second := Plan(ctx, VariantLink)
	if second[0].Args[0] != "cmd" {
		t.Errorf("Plan result shares storage between calls: %v", second[0].Args)
	}
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"": VariantLink, "link": VariantLink, "EXEC": VariantExec} {
		got, err := ParseVariant(in)
		if err != nil {
			t.Fatalf("ParseVariant(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseVariant(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseVariant("symlink"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("ParseVariant(symlink) = %v, want ErrUnknownVariant", err)
	}
}

func TestContextFrom(t *testing.T) {
	ctx := ContextFrom(MapValues{
		KeyOS:        "win",
		KeyAllUsers:  "true",
		KeyTargetDir: `C:\qpmx`,
	})
	want := Context{OS: platform.Windows, AllUsers: true, TargetDir: `C:\qpmx`}
	if ctx != want {
		t.Errorf("ContextFrom() = %+v, want %+v", ctx, want)
	}

	for _, v := range []string{"", "false", "TRUE", "1", "yes", " true", "true "} {
		if ContextFrom(MapValues{KeyAllUsers: v}).AllUsers {
			t.Errorf("allUsers=%q parsed as true", v)
		}
	}
}

func TestContextFromKeepsOSVerbatim(t *testing.T) {
	tests := []struct {
		os     string
		wantOS platform.OS
		link   int
	}{
		{os: "windows", wantOS: "windows", link: 0},
		{os: "WIN", wantOS: "WIN", link: 0},
		{os: "linux", wantOS: "linux", link: 0},
		{os: "x11", wantOS: platform.X11, link: 1},
	}
	for _, tt := range tests {
		t.Run(tt.os, func(t *testing.T) {
			ctx := ContextFrom(MapValues{KeyOS: tt.os, KeyAllUsers: "true"})
			if ctx.OS != tt.wantOS {
				t.Errorf("OS = %q, want %q", ctx.OS, tt.wantOS)
			}
			if got := Plan(ctx, VariantLink); len(got) != tt.link {
				t.Errorf("VariantLink plan = %v, want %d operation(s)", got, tt.link)
			}
			ops := Plan(ctx, VariantExec)
			if len(ops) != 1 || ops[0].Name != OpExecute || ops[0].Args[0] != "ln" {
				t.Errorf("VariantExec plan = %v, want one ln -s operation", ops)
			}
		})
	}
}
