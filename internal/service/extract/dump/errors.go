package dump

import (
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

func newErrDirectoryAccessFailed(err error, dir string) error {
	return apperrors.Wrapf(err, apperrors.System, "덤프 디렉터리에 접근할 수 없습니다: '%s'", dir)
}

func newErrFileWriteFailed(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.System, "덤프 파일을 쓰지 못했습니다: '%s'", path)
}
