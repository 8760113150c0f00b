package credsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credrepo"
	"github.com/yusufsyaifudin/pnscred/pkg/tracer"
	"github.com/yusufsyaifudin/pnscred/pkg/uid"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
	"github.com/yusufsyaifudin/pnscred/pnscred"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	UIDGen   uid.UID       `validate:"required"`
	CredRepo credrepo.Repo `validate:"required"`

	// AllowLocalMockPns accepts the loopback mock endpoint, only meant for local development.
	AllowLocalMockPns bool `validate:"-"`

	Now func() time.Time `validate:"-"`
}

type ServiceDefault struct {
	Config Config
}

var _ Service = (*ServiceDefault)(nil)

func New(cfg Config) (svc *ServiceDefault, err error) {
	err = validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	svc = &ServiceDefault{
		Config: cfg,
	}

	return
}

func (s *ServiceDefault) Create(ctx context.Context, in InCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credsvc.Create")
	defer span.End()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Label = strings.TrimSpace(in.Label)
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: error create credential: %s", ErrValidation, err)
		return
	}

	clientID := in.ClientID
	span.SetAttributes(attribute.String("client_id", clientID), attribute.String("platform", in.Platform))

	cred, err := s.decodeAndValidate(in.Platform, in.Format, in.Document)
	if err != nil {
		return
	}

	// the same credential must not be registered twice under different labels
	existing, err := s.Config.CredRepo.ListByClient(ctx, credrepo.InListByClient{
		ClientID: clientID,
		Platform: in.Platform,
	})
	if err != nil {
		err = fmt.Errorf("cannot list existing credentials: %w", err)
		return
	}

	for _, row := range existing.Credentials {
		stored, _err := pnscred.DecodeJSON(row.Platform, []byte(row.PropertiesJSON))
		if _err != nil {
			ylog.Error(ctx, "skip undecodable stored credential", ylog.KV("id", row.ID), ylog.KV("error", _err))
			continue
		}

		if cred.Equal(stored) {
			err = fmt.Errorf("%w: same credential is registered as label '%s'", ErrDuplicate, row.Label)
			return
		}
	}

	propsJSON, err := json.Marshal(cred)
	if err != nil {
		err = fmt.Errorf("cannot marshal credential properties: %w", err)
		return
	}

	id, err := s.Config.UIDGen.NextID()
	if err != nil {
		err = fmt.Errorf("cannot generate uid for new record: %w", err)
		return
	}

	now := s.Config.Now().UTC()
	outInsert, err := s.Config.CredRepo.Insert(ctx, credrepo.InInsert{
		Credential: credrepo.Credential{
			ID:             int64(id),
			ClientID:       clientID,
			Platform:       in.Platform,
			Label:          in.Label,
			PropertiesJSON: string(propsJSON),
			CreatedAt:      now.UnixMicro(),
			UpdatedAt:      now.UnixMicro(),
		},
	})
	if errors.Is(err, credrepo.ErrDuplicate) {
		err = fmt.Errorf("%w: %s", ErrDuplicate, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot insert credential record: %w", err)
		return
	}

	out.Credential, err = FromRepo(outInsert.Credential)
	if err != nil {
		return
	}

	if out.Credential.MockEndpoint {
		ylog.Info(ctx, "credential registered against a mock push notification endpoint",
			ylog.KV("client_id", clientID),
			ylog.KV("label", out.Credential.Label),
			ylog.KV("credential", fmt.Sprint(cred)),
		)
	}

	return
}

func (s *ServiceDefault) Validate(ctx context.Context, in InValidate) (out OutValidate, err error) {
	var span trace.Span
	_, span = tracer.StartSpan(ctx, "credsvc.Validate")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	cred, err := s.decodeAndValidate(in.Platform, in.Format, in.Document)
	if err != nil {
		return
	}

	out = OutValidate{
		Platform:     cred.AppPlatform(),
		Credential:   cred,
		MockEndpoint: IsMockEndpoint(cred),
		ETag:         ETag(cred),
	}

	return
}

func (s *ServiceDefault) Get(ctx context.Context, in InGet) (out OutGet, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credsvc.Get")
	defer span.End()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Label = strings.TrimSpace(in.Label)
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	outGet, err := s.Config.CredRepo.GetByLabel(ctx, credrepo.InGetByLabel{
		ClientID: in.ClientID,
		Platform: in.Platform,
		Label:    in.Label,
	})
	if errors.Is(err, credrepo.ErrNotFound) {
		err = fmt.Errorf("%w: %s", ErrNotFound, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot get credential by label: %w", err)
		return
	}

	out.Credential, err = FromRepo(outGet.Credential)
	return
}

func (s *ServiceDefault) List(ctx context.Context, in InList) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credsvc.List")
	defer span.End()

	in.ClientID = strings.TrimSpace(in.ClientID)
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	outList, err := s.Config.CredRepo.ListByClient(ctx, credrepo.InListByClient{
		ClientID: in.ClientID,
		Platform: in.Platform,
	})
	if err != nil {
		err = fmt.Errorf("cannot list credentials: %w", err)
		return
	}

	creds := make([]Credential, 0, len(outList.Credentials))
	for _, row := range outList.Credentials {
		cred, _err := FromRepo(row)
		if _err != nil {
			ylog.Error(ctx, "skip undecodable stored credential", ylog.KV("id", row.ID), ylog.KV("error", _err))
			continue
		}

		creds = append(creds, cred)
	}

	out = OutList{
		Credentials: creds,
	}

	return
}

func (s *ServiceDefault) Delete(ctx context.Context, in InDelete) (out OutDelete, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "credsvc.Delete")
	defer span.End()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Label = strings.TrimSpace(in.Label)
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	outDel, err := s.Config.CredRepo.DelByLabel(ctx, credrepo.InDelByLabel{
		ClientID:  in.ClientID,
		Platform:  in.Platform,
		Label:     in.Label,
		DeletedAt: s.Config.Now().UTC().UnixMicro(),
	})
	if errors.Is(err, credrepo.ErrNotFound) {
		err = fmt.Errorf("%w: %s", ErrNotFound, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot delete credential: %w", err)
		return
	}

	out.Credential, err = FromRepo(outDel.Credential)
	return
}

func (s *ServiceDefault) Examples(_ context.Context) (out OutExamples) {
	items := make([]Example, 0)
	for _, platform := range pnscred.Platforms() {
		cred, err := pnscred.Example(platform)
		if err != nil {
			continue
		}

		items = append(items, Example{
			Platform:   platform,
			Credential: cred,
		})
	}

	out = OutExamples{
		Items: items,
	}

	return
}

// decodeAndValidate returns pnscred errors as is, so callers can inspect them with errors.Is.
func (s *ServiceDefault) decodeAndValidate(platform string, format Format, doc []byte) (pnscred.Credential, error) {
	cred, err := Decode(platform, format, doc)
	if errors.Is(err, pnscred.ErrUnsupportedPlatform) || errors.Is(err, ErrValidation) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err = cred.Validate(s.Config.AllowLocalMockPns); err != nil {
		return nil, err
	}

	return cred, nil
}
