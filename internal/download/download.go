// Package download fetches multi-message envelopes announced by an
// apply-down acknowledgement.
package download

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	cfg "github.com/arne314/forward-collab/internal/config"
	"github.com/arne314/forward-collab/internal/metrics"
	"github.com/arne314/forward-collab/internal/multimsg"
	"github.com/arne314/forward-collab/internal/pb"
)

var ErrNoServer = errors.New("apply-down response lists no download server")

// MakeHeaders returns the request headers the platform's blob servers expect.
func MakeHeaders(version string, cookie string) http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", fmt.Sprintf("QQ/%s CFNetwork/1126", version))
	headers.Set("Net-Type", "Wifi")
	if cookie != "" {
		headers.Set("Cookie", cookie)
	}
	return headers
}

// BlobURL builds the download url from the first server of rsp.
// Server addresses are little-endian IPv4.
func BlobURL(rsp *pb.MultiMsgApplyDownRsp) (string, error) {
	if len(rsp.DownIp) == 0 || len(rsp.DownPort) == 0 {
		return "", ErrNoServer
	}
	ip := net.IP(binary.LittleEndian.AppendUint32(nil, rsp.DownIp[0]))
	host := net.JoinHostPort(ip.String(), strconv.FormatUint(uint64(rsp.DownPort[0]), 10))
	return "http://" + host + string(rsp.ThumbDownPara), nil
}

type Downloader struct {
	Client  *http.Client
	Decoder *multimsg.Decoder
	Version string
	Cookie  string
}

func NewDownloader(config *cfg.DownloadConfig, decoder *multimsg.Decoder) *Downloader {
	return &Downloader{
		Client:  &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second},
		Decoder: decoder,
		Version: config.ClientVersion,
		Cookie:  config.Cookie,
	}
}

func (d *Downloader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header = MakeHeaders(d.Version, d.Cookie)
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if code := resp.StatusCode; code != http.StatusOK {
		return nil, fmt.Errorf("received http status %v from %v", code, url)
	}
	return data, nil
}

// Fetch downloads the raw envelope described by rsp.
func (d *Downloader) Fetch(ctx context.Context, rsp *pb.MultiMsgApplyDownRsp) ([]byte, error) {
	url, err := BlobURL(rsp)
	if err != nil {
		metrics.Downloads.WithLabelValues("error").Inc()
		return nil, err
	}
	data, err := d.get(ctx, url)
	if err != nil {
		metrics.Downloads.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Downloads.WithLabelValues("ok").Inc()
	log.Debugf("Downloaded %v byte envelope from %v", len(data), url)
	return data, nil
}

// FetchItems downloads and decodes the envelope with the session key
// carried by rsp.
func (d *Downloader) FetchItems(ctx context.Context, rsp *pb.MultiMsgApplyDownRsp) (multimsg.ItemTable, error) {
	payload, err := d.Fetch(ctx, rsp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", multimsg.ErrIO, err)
	}
	return d.Decoder.DecodeEnvelope(payload, rsp.MsgKey)
}
