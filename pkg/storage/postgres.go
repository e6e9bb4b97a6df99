package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/types"
)

// productsQuery flattens the relational product graph into one row per product,
// with the many-to-many relations and the per category specification rows as json.
const productsQuery = `
SELECT
	p.id,
	p.name,
	coalesce(p.subtitle, ''),
	coalesce(p.part_number, ''),
	coalesce(p.description, ''),
	coalesce(p.stock, ''),
	c.id,
	coalesce(c.name, ''),
	coalesce(c.kind, ''),
	m.id,
	coalesce(m.name, ''),
	coalesce((SELECT json_agg(json_build_object('id', a.id, 'name', a.name) ORDER BY a.name)
		FROM product_applications pa JOIN applications a ON a.id = pa.application_id
		WHERE pa.product_id = p.id), '[]'),
	coalesce((SELECT json_agg(json_build_object('id', ce.id, 'name', ce.name) ORDER BY ce.name)
		FROM product_certifications pc JOIN certifications ce ON ce.id = pc.certification_id
		WHERE pc.product_id = p.id), '[]'),
	coalesce((SELECT json_agg(f.name ORDER BY f.name)
		FROM product_features pf JOIN features f ON f.id = pf.feature_id
		WHERE pf.product_id = p.id), '[]'),
	coalesce((SELECT json_agg(row_to_json(d) ORDER BY d.id)
		FROM product_documents d WHERE d.product_id = p.id), '[]'),
	coalesce((SELECT json_agg(row_to_json(o) ORDER BY o.id)
		FROM product_options o WHERE o.product_id = p.id), '[]'),
	coalesce(p.images, '[]'),
	(SELECT row_to_json(l) FROM led_driver_ic l WHERE l.product_id = p.id),
	(SELECT row_to_json(dd) FROM diodes dd WHERE dd.product_id = p.id),
	coalesce(extract(epoch FROM p.created_at)::bigint, 0),
	coalesce(extract(epoch FROM p.updated_at)::bigint, 0)
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN manufacturers m ON m.id = p.manufacturer_id
WHERE p.status IS DISTINCT FROM 'deleted'
ORDER BY p.id`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// productRow is one scanned row of productsQuery.
type productRow struct {
	Id               int64
	Name             string
	Subtitle         string
	PartNumber       string
	Description      string
	Stock            string
	CategoryId       *int64
	CategoryName     string
	CategoryKind     string
	ManufacturerId   *int64
	ManufacturerName string
	Applications     []byte
	Certifications   []byte
	Features         []byte
	Documents        []byte
	Options          []byte
	Images           []byte
	LEDDriverIC      []byte
	Diode            []byte
	Created          int64
	Updated          int64
}

func (r *productRow) fields() []any {
	return []any{
		&r.Id, &r.Name, &r.Subtitle, &r.PartNumber, &r.Description, &r.Stock,
		&r.CategoryId, &r.CategoryName, &r.CategoryKind,
		&r.ManufacturerId, &r.ManufacturerName,
		&r.Applications, &r.Certifications, &r.Features, &r.Documents, &r.Options, &r.Images,
		&r.LEDDriverIC, &r.Diode,
		&r.Created, &r.Updated,
	}
}

func unmarshalList(name string, data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	if err := jsoncompat.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Product converts the row to a catalog product. The category kind decides which
// specification row is used, falling back to whichever one exists.
func (r *productRow) Product() (*types.Product, error) {
	p := &types.Product{
		Id:          types.ProductId(r.Id),
		Name:        r.Name,
		Subtitle:    r.Subtitle,
		PartNumber:  r.PartNumber,
		Description: r.Description,
		Stock:       types.StockStatus(r.Stock),
		Created:     r.Created,
		LastUpdate:  r.Updated,
	}
	kind, ok := types.ParseCategoryKind(r.CategoryKind)
	if !ok {
		kind = types.CategoryGeneric
	}
	if r.CategoryId != nil {
		p.Category = types.Category{Id: uint(*r.CategoryId), Name: r.CategoryName, Kind: kind}
	}
	if r.ManufacturerId != nil {
		p.Manufacturer = &types.Manufacturer{Id: uint(*r.ManufacturerId), Name: r.ManufacturerName}
	}
	if err := unmarshalList("applications", r.Applications, &p.Applications); err != nil {
		return nil, err
	}
	if err := unmarshalList("certifications", r.Certifications, &p.Certifications); err != nil {
		return nil, err
	}
	if err := unmarshalList("features", r.Features, &p.Features); err != nil {
		return nil, err
	}
	if err := unmarshalList("documents", r.Documents, &p.Documents); err != nil {
		return nil, err
	}
	if err := unmarshalList("options", r.Options, &p.Options); err != nil {
		return nil, err
	}
	if err := unmarshalList("images", r.Images, &p.Images); err != nil {
		return nil, err
	}

	hasLed := len(r.LEDDriverIC) > 0
	hasDiode := len(r.Diode) > 0
	switch {
	case hasLed && (kind == types.CategoryLEDDriverIC || !hasDiode):
		p.Specification.LEDDriverIC = &types.LEDDriverICSpec{}
		if err := unmarshalList("led_driver_ic", r.LEDDriverIC, p.Specification.LEDDriverIC); err != nil {
			return nil, err
		}
	case hasDiode:
		p.Specification.Diode = &types.DiodeSpec{}
		if err := unmarshalList("diodes", r.Diode, p.Specification.Diode); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LoadProducts reads the whole catalog. Rows that fail to decode or validate are
// logged and skipped.
func (pr *PostgresRepository) LoadProducts(ctx context.Context) ([]*types.Product, error) {
	rows, err := pr.pool.Query(ctx, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	ret := make([]*types.Product, 0)
	row := &productRow{}
	_, err = pgx.ForEachRow(rows, row.fields(), func() error {
		p, err := row.Product()
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			logx.Warn().Err(err).Int64("id", row.Id).Msg("skipping product row")
			return nil
		}
		ret = append(ret, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return ret, nil
}
