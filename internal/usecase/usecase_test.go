package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/snip/internal/entity"
	"github.com/vadimbarashkov/snip/internal/metrics"
	"github.com/vadimbarashkov/snip/mocks/usecase"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "empty", url: "", want: ""},
		{name: "blank", url: "   ", want: ""},
		{name: "without scheme", url: "example.com", want: "https://example.com"},
		{name: "with path", url: "example.com/a?b=c", want: "https://example.com/a?b=c"},
		{name: "http", url: "http://example.com", want: "http://example.com"},
		{name: "https", url: "https://example.com", want: "https://example.com"},
		{name: "other scheme", url: "ftp://example.com", want: "ftp://example.com"},
		{name: "surrounding spaces", url: "  example.com ", want: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.url))
		})
	}
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown  error
	visitor     entity.Visitor
	urlRepoMock *usecase.MockUrlRepository
	metrics     *metrics.Metrics
	uc          *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.visitor = entity.Visitor{UserAgent: "test-agent", IP: "127.0.0.1"}
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = usecase.NewMockUrlRepository(suite.T())
	suite.metrics = metrics.New(prometheus.NewRegistry())
	suite.uc = NewURLUseCase(suite.urlRepoMock, suite.metrics)
}

func generatedShortCode() any {
	re := regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)
	return mock.MatchedBy(func(shortCode string) bool {
		return re.MatchString(shortCode)
	})
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	suite.Run("empty url", func() {
		url, err := suite.uc.ShortenURL(context.Background(), "", "")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInvalidURL)
		suite.Nil(url)
	})

	suite.Run("invalid url", func() {
		for _, raw := range []string{"not a url", "ftp://example.com", "https://", "http://exa mple.com"} {
			url, err := suite.uc.ShortenURL(context.Background(), raw, "")

			suite.ErrorIs(err, entity.ErrInvalidURL, raw)
			suite.Nil(url)
		}
	})

	suite.Run("short code generation error", func() {
		suite.uc.shortCodeLength = -1

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "")

		suite.Error(err)
		suite.Nil(url)
	})

	suite.Run("maximum retries error", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Times(10).
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
		suite.Zero(testutil.ToFloat64(suite.metrics.URLsCreatedTotal))
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("regenerates on collision", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Once().
			Return(nil, entity.ErrShortCodeExists)
		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Once().
			Return(&entity.URL{ShortCode: "abc123", OriginalURL: "https://example.com"}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "")

		suite.NoError(err)
		suite.Equal("abc123", url.ShortCode)
		suite.urlRepoMock.AssertNumberOfCalls(suite.T(), "Save", 2)
	})

	suite.Run("success with normalization", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
			}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), "example.com", "")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("abc123", url.ShortCode)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Zero(url.Clicks)
		suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.URLsCreatedTotal))
		suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ActiveURLs))
	})

	suite.Run("invalid custom code", func() {
		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "a_b")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInvalidShortCode)
		suite.Nil(url)
	})

	suite.Run("reserved custom code", func() {
		suite.uc = NewURLUseCase(suite.urlRepoMock, suite.metrics, WithReservedShortCodes("stats", "health"))

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "stats")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(url)
	})

	suite.Run("custom code exists", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), "my-link", "https://example.com").
			Once().
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "my-link")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(url)
	})

	suite.Run("custom code success", func() {
		suite.urlRepoMock.
			On("Save", context.Background(), "my-link", "https://example.com").
			Once().
			Return(&entity.URL{ShortCode: "my-link", OriginalURL: "https://example.com"}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com", "my-link")

		suite.NoError(err)
		suite.Equal("my-link", url.ShortCode)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abc123", suite.visitor).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc123", suite.visitor)

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
		suite.Zero(testutil.ToFloat64(suite.metrics.RedirectsTotal))
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abc123", suite.visitor).
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
				URLStats:    entity.URLStats{Clicks: 1},
			}, nil)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc123", suite.visitor)

		suite.NoError(err)
		suite.EqualValues(1, url.Clicks)
		suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.RedirectsTotal))
	})
}

func (suite *URLUseCaseTestSuite) TestRecordClick() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abc123", suite.visitor).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.RecordClick(context.Background(), "abc123", suite.visitor)

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abc123", suite.visitor).
			Once().
			Return(&entity.URL{ShortCode: "abc123", URLStats: entity.URLStats{Clicks: 2}}, nil)

		url, err := suite.uc.RecordClick(context.Background(), "abc123", suite.visitor)

		suite.NoError(err)
		suite.EqualValues(2, url.Clicks)
		suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ClicksRecordedTotal))
		suite.Zero(testutil.ToFloat64(suite.metrics.RedirectsTotal))
	})
}

func (suite *URLUseCaseTestSuite) TestGetURL() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", context.Background(), "doesnotexist").
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.GetURL(context.Background(), "doesnotexist")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", context.Background(), "abc123").
			Once().
			Return(&entity.URL{ShortCode: "abc123", OriginalURL: "https://example.com"}, nil)

		url, err := suite.uc.GetURL(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal("https://example.com", url.OriginalURL)
	})
}

func (suite *URLUseCaseTestSuite) TestGetClicks() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveClicks", context.Background(), "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		clicks, err := suite.uc.GetClicks(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(clicks)
	})

	suite.Run("success", func() {
		want := []entity.Click{{ID: "1", Timestamp: time.Now(), Visitor: suite.visitor}}

		suite.urlRepoMock.
			On("RetrieveClicks", context.Background(), "abc123").
			Once().
			Return(want, nil)

		clicks, err := suite.uc.GetClicks(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal(want, clicks)
	})
}

func (suite *URLUseCaseTestSuite) TestDeleteURL() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("Remove", context.Background(), "abc123").
			Once().
			Return(entity.ErrURLNotFound)

		err := suite.uc.DeleteURL(context.Background(), "abc123")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Zero(testutil.ToFloat64(suite.metrics.URLsDeletedTotal))
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("Remove", context.Background(), "abc123").
			Once().
			Return(nil)

		err := suite.uc.DeleteURL(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.URLsDeletedTotal))
	})
}

func (suite *URLUseCaseTestSuite) TestGetStats() {
	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("Stats", context.Background(), 10, 7).
			Once().
			Return(nil, suite.errUnknown)

		stats, err := suite.uc.GetStats(context.Background())

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(stats)
	})

	suite.Run("configured limits", func() {
		suite.uc = NewURLUseCase(suite.urlRepoMock, suite.metrics,
			WithTopURLsLimit(3),
			WithClicksByDayWindow(30),
		)

		suite.urlRepoMock.
			On("Stats", context.Background(), 3, 30).
			Once().
			Return(&entity.Stats{TotalURLs: 1, TotalClicks: 5, AverageClicks: 5}, nil)

		stats, err := suite.uc.GetStats(context.Background())

		suite.NoError(err)
		suite.Equal(1, stats.TotalURLs)
		suite.EqualValues(5, stats.TotalClicks)
	})
}

func (suite *URLUseCaseTestSuite) TestOptions() {
	suite.Run("short code length in range", func() {
		for _, n := range []int{3, 10} {
			uc := NewURLUseCase(suite.urlRepoMock, suite.metrics, WithShortCodeLength(n))
			suite.Equal(n, uc.shortCodeLength)
		}
	})

	suite.Run("short code length out of range", func() {
		for _, n := range []int{-1, 0, 2, 11, 12} {
			uc := NewURLUseCase(suite.urlRepoMock, suite.metrics, WithShortCodeLength(n))
			suite.Equal(defaultShortCodeLength, uc.shortCodeLength, n)
		}
	})

	suite.Run("out of range length still generates valid codes", func() {
		suite.uc = NewURLUseCase(suite.urlRepoMock, suite.metrics, WithShortCodeLength(0))

		suite.urlRepoMock.
			On("Save", context.Background(), generatedShortCode(), "https://example.com").
			Once().
			Return(func(_ context.Context, shortCode, originalURL string) (*entity.URL, error) {
				return &entity.URL{ShortCode: shortCode, OriginalURL: originalURL}, nil
			})

		url, err := suite.uc.ShortenURL(context.Background(), "example.com", "")

		suite.NoError(err)
		suite.Len(url.ShortCode, defaultShortCodeLength)
	})

	suite.Run("non-positive limits", func() {
		uc := NewURLUseCase(suite.urlRepoMock, suite.metrics,
			WithTopURLsLimit(0),
			WithClicksByDayWindow(-5),
		)

		suite.Equal(defaultTopURLsLimit, uc.topURLsLimit)
		suite.Equal(defaultClicksByDayWindow, uc.clicksByDayWindow)
	})
}

func (suite *URLUseCaseTestSuite) TestCountURLs() {
	suite.Run("success", func() {
		suite.urlRepoMock.
			On("Count", context.Background()).
			Once().
			Return(3, nil)

		n, err := suite.uc.CountURLs(context.Background())

		suite.NoError(err)
		suite.Equal(3, n)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
