package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aalemi-dev/observer-lab/metadata"
)

// Save stores infos, replacing the supertypes and annotations of classes
// that already exist. All records are written in one transaction.
func (c *Catalog) Save(ctx context.Context, infos ...metadata.ClassInfo) error {
	start := time.Now()

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, info := range infos {
			if info.Name == "" {
				return fmt.Errorf("%w: class with empty name", ErrInvalidData)
			}
			if err := saveClass(tx, info); err != nil {
				return fmt.Errorf("save %s: %w", info.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		err = wrapTranslated(err)
		c.logError(ctx, "failed to save classes", err, map[string]interface{}{"count": len(infos)})
	}

	c.observeOperation("save", "classes", "", time.Since(start), err, int64(len(infos)), nil)
	return err
}

func saveClass(tx *gorm.DB, info metadata.ClassInfo) error {
	row := classRow{Name: info.Name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}

	if err := tx.Where("class_name = ?", info.Name).Delete(&supertypeRow{}).Error; err != nil {
		return err
	}
	if err := tx.Where("class_name = ?", info.Name).Delete(&annotationRow{}).Error; err != nil {
		return err
	}

	supers := make([]supertypeRow, 0, len(info.Supertypes))
	seen := make(map[string]struct{}, len(info.Supertypes))
	for i, s := range info.Supertypes {
		if _, dup := seen[s]; dup || s == "" {
			continue
		}
		seen[s] = struct{}{}
		supers = append(supers, supertypeRow{ClassName: info.Name, Supertype: s, Ordinal: i})
	}
	if len(supers) > 0 {
		if err := tx.Create(&supers).Error; err != nil {
			return err
		}
	}

	markers := make([]annotationRow, 0, len(info.Annotations))
	seen = make(map[string]struct{}, len(info.Annotations))
	for _, a := range info.Annotations {
		if _, dup := seen[a]; dup || a == "" {
			continue
		}
		seen[a] = struct{}{}
		markers = append(markers, annotationRow{ClassName: info.Name, Marker: a})
	}
	if len(markers) > 0 {
		if err := tx.Create(&markers).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get returns the stored record of name with its direct supertypes in
// declaration order.
func (c *Catalog) Get(ctx context.Context, name string) (metadata.ClassInfo, error) {
	var row classRow
	err := c.db.WithContext(ctx).
		Preload("Supertypes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal") }).
		Preload("Annotations", func(db *gorm.DB) *gorm.DB { return db.Order("marker") }).
		Where("name = ?", name).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return metadata.ClassInfo{}, metadata.NotFound(name)
		}
		return metadata.ClassInfo{}, wrapTranslated(err)
	}

	info := metadata.ClassInfo{Name: row.Name}
	for _, s := range row.Supertypes {
		info.Supertypes = append(info.Supertypes, s.Supertype)
	}
	for _, a := range row.Annotations {
		info.Annotations = append(info.Annotations, a.Marker)
	}
	return info, nil
}

// Lookup implements metadata.Service. The assignable set is the class, the
// root type and every ancestor reachable through class_supertypes.
func (c *Catalog) Lookup(ctx context.Context, name string) (md metadata.ClassMetadata, err error) {
	start := time.Now()
	var ancestors []string
	defer func() {
		c.observeOperation("lookup", name, "", time.Since(start), err, int64(len(ancestors)), nil)
	}()

	info, err := c.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	ancestors, err = c.ancestors(ctx, info)
	if err != nil {
		return nil, err
	}
	return metadata.NewClassMetadata(info.Name, c.root, ancestors, info.Annotations), nil
}

// ancestors walks supertype edges one level per query.
func (c *Catalog) ancestors(ctx context.Context, info metadata.ClassInfo) ([]string, error) {
	seen := map[string]struct{}{info.Name: {}}
	var (
		out      []string
		frontier []string
	)
	for _, s := range info.Supertypes {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
			frontier = append(frontier, s)
		}
	}

	for len(frontier) > 0 {
		var edges []supertypeRow
		if err := c.db.WithContext(ctx).Where("class_name IN ?", frontier).Find(&edges).Error; err != nil {
			return nil, wrapTranslated(err)
		}
		frontier = frontier[:0]
		for _, e := range edges {
			if _, ok := seen[e.Supertype]; ok {
				continue
			}
			seen[e.Supertype] = struct{}{}
			out = append(out, e.Supertype)
			frontier = append(frontier, e.Supertype)
		}
	}
	return out, nil
}

// Delete removes name and its edges. Deleting a missing class is not an error.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_name = ?", name).Delete(&supertypeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_name = ?", name).Delete(&annotationRow{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&classRow{}).Error
	})
	if err != nil {
		err = wrapTranslated(err)
	}
	c.observeOperation("delete", name, "", time.Since(start), err, 0, nil)
	return err
}

// Names returns all stored class names in sorted order.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.db.WithContext(ctx).Model(&classRow{}).Pluck("name", &names).Error; err != nil {
		return nil, wrapTranslated(err)
	}
	sort.Strings(names)
	return names, nil
}

// Index loads the whole catalog into an in-memory metadata.Index.
func (c *Catalog) Index(ctx context.Context) (*metadata.Index, error) {
	start := time.Now()

	var rows []classRow
	err := c.db.WithContext(ctx).
		Preload("Supertypes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal") }).
		Preload("Annotations").
		Order("name").
		Find(&rows).Error
	if err != nil {
		err = wrapTranslated(err)
		c.observeOperation("load_index", "classes", "", time.Since(start), err, 0, nil)
		return nil, err
	}

	infos := make([]metadata.ClassInfo, 0, len(rows))
	for _, row := range rows {
		info := metadata.ClassInfo{Name: row.Name}
		for _, s := range row.Supertypes {
			info.Supertypes = append(info.Supertypes, s.Supertype)
		}
		for _, a := range row.Annotations {
			info.Annotations = append(info.Annotations, a.Marker)
		}
		infos = append(infos, info)
	}

	idx, err := metadata.NewIndex(infos, metadata.WithRootType(c.root))
	c.observeOperation("load_index", "classes", "", time.Since(start), err, int64(len(infos)), nil)
	return idx, err
}
