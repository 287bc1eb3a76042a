package orm

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// EncodeAll and DecodeAll can be used concurrently.
var (
	patchEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	patchDecoder, _ = zstd.NewReader(nil)
)

func encodePatch(patch string) []byte {
	if patch == "" {
		return nil
	}

	return patchEncoder.EncodeAll([]byte(patch), nil)
}

func decodePatch(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	result, err := patchDecoder.DecodeAll(data, nil)
	if err != nil {
		return "", errors.Wrap(err, "error decompressing patch")
	}

	return string(result), nil
}

func encodeOptional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}

func decodeOptional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func encodeList(v []string) []string {
	if len(v) == 0 {
		return nil
	}
	return v
}
