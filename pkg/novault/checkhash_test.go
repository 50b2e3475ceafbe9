package novault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	refCheckMaster = "check  password"
	refCheckHash   = CheckHash("nxRX0JgmcocSQa6i")
)

func TestComputeCheckHash(t *testing.T) {
	ch, err := ComputeCheckHash(refSettings(t), master(refCheckMaster))
	require.NoError(t, err)
	assert.Equal(t, refCheckHash, ch)
	assert.Len(t, ch, CheckHashLen)
}

func TestComputeCheckHash_Sensitivity(t *testing.T) {
	restore := func(rec SettingsRecord) Settings {
		s, err := RestoreSettings(rec)
		require.NoError(t, err)
		return s
	}
	tests := map[string]struct {
		settings Settings
		master   string
	}{
		"master":    {refSettings(t), "other check for password"},
		"level":     {restore(SettingsRecord{Level: 2, Mem: 10, Threads: 1, Secret: refPepper}), refCheckMaster},
		"mem":       {restore(SettingsRecord{Level: 1, Mem: 9, Threads: 1, Secret: refPepper}), refCheckMaster},
		"threads":   {restore(SettingsRecord{Level: 1, Mem: 10, Threads: 2, Secret: refPepper}), refCheckMaster},
		"pepper":    {restore(SettingsRecord{Level: 1, Mem: 10, Threads: 1, Secret: refPepper + "!"}), refCheckMaster},
		"no pepper": {restore(SettingsRecord{Level: 1, Mem: 10, Threads: 1}), refCheckMaster},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ch, err := ComputeCheckHash(tc.settings, master(tc.master))
			require.NoError(t, err)
			assert.Len(t, ch, CheckHashLen)
			assert.NotEqual(t, refCheckHash, ch)
		})
	}
}

func TestValidateCheckHash(t *testing.T) {
	rec := refSettings(t).Record()
	rec.CheckHash = string(refCheckHash)
	settings, err := RestoreSettings(rec)
	require.NoError(t, err)

	assert.NoError(t, ValidateCheckHash(settings, master(refCheckMaster)))
}

func TestValidateCheckHash_Neg(t *testing.T) {
	rec := refSettings(t).Record()
	rec.CheckHash = string(refCheckHash)
	settings, err := RestoreSettings(rec)
	require.NoError(t, err)

	wrong := "other check for password"
	err = ValidateCheckHash(settings, master(wrong))
	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.NotContains(t, err.Error(), string(refCheckHash))
	assert.NotContains(t, err.Error(), wrong)

	err = ValidateCheckHash(refSettings(t), master(refCheckMaster))
	assert.ErrorIs(t, err, ErrCheckFailed, "no stored checkhash should never validate")

	err = ValidateCheckHash(settings, master("too short"))
	assert.ErrorIs(t, err, ErrInvalidSecretLength)
}
