package cmd

import (
	"path/filepath"
	"testing"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/creack/pty"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func setLinkSettings(t *testing.T) {
	t.Helper()
	t.Cleanup(viper.Reset)
	viper.Set("baud", 9600)
	viper.Set("byte-size", 8)
	viper.Set("stop-bits", 1)
	viper.Set("parity", "none")
	viper.Set("timeout", 100*time.Millisecond)
}

func TestShowConfigRestoresTerminal(t *testing.T) {
	setLinkSettings(t)

	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	before, err := unix.IoctlGetTermios(int(slave.Fd()), unix.TCGETS)
	require.NoError(t, err)

	table, err := showConfig(slave.Name())
	require.NoError(t, err)
	require.Contains(t, table, "9600 8N1")
	require.Contains(t, table, "n/a")

	after, err := unix.IoctlGetTermios(int(slave.Fd()), unix.TCGETS)
	require.NoError(t, err)
	require.Equal(t, before.Lflag, after.Lflag)
	require.Equal(t, before.Cflag, after.Cflag)
}

func TestShowConfigMissingDevice(t *testing.T) {
	setLinkSettings(t)

	_, err := showConfig(filepath.Join(t.TempDir(), "ttyNONE"))
	require.ErrorIs(t, err, comport.ErrDeviceNotFound)
}
